package main

import (
	"context"
	"fmt"

	"github.com/trezcool/recomendo/core/teacher"
)

func (cli *commandLine) addTeacher(name, email, institution, pwd string) error {
	ctx := context.Background()
	nt := teacher.NewTeacher{Name: name, Email: email, Institution: institution, Password: pwd}
	if err := nt.Validate(ctx, cli.validate, cli.teacherSvc); err != nil {
		return err
	}
	t, err := cli.teacherSvc.Register(ctx, nt)
	if err != nil {
		return err
	}
	fmt.Printf("teacher %s created (id: %s)\n", t.Email, t.ID)
	return nil
}

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.teacherSvc.SetPassword(context.Background(), email, pwd)
}

func (cli *commandLine) seedColleges() error {
	n, err := cli.collegeSvc.Seed(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d colleges created\n", n)
	return nil
}
