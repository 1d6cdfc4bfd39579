package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alejandroviegener/g-challenge/internal/adapters/grpc/handler"
	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/spf13/cobra"
)

func newGetCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Look up an employee, job or department by id",
	}

	cmd.AddCommand(
		newGetKindCmd(root, "employee", func(ctx context.Context, c *handler.AgendaClient, id int64) (string, error) {
			e, err := c.GetEmployee(ctx, id)
			if err != nil {
				return "", err
			}
			return formatEmployee(e), nil
		}),
		newGetKindCmd(root, "job", func(ctx context.Context, c *handler.AgendaClient, id int64) (string, error) {
			j, err := c.GetJob(ctx, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("job %d: %s", j.ID(), j.Name()), nil
		}),
		newGetKindCmd(root, "department", func(ctx context.Context, c *handler.AgendaClient, id int64) (string, error) {
			d, err := c.GetDepartment(ctx, id)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("department %d: %s", d.ID(), d.Name()), nil
		}),
	)
	return cmd
}

func newGetKindCmd(root *rootOptions, kind string, fetch func(context.Context, *handler.AgendaClient, int64) (string, error)) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " <id>",
		Short: "Look up a " + kind + " by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid %s id %q: %w", kind, args[0], err)
			}

			client, closeConn, err := root.dial()
			if err != nil {
				return err
			}
			defer closeConn()

			ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
			defer cancel()

			line, err := fetch(ctx, client, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
			return nil
		},
	}
}

func newSizeCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Show how many employees, jobs and departments are registered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeConn, err := root.dial()
			if err != nil {
				return err
			}
			defer closeConn()

			ctx, cancel := context.WithTimeout(cmd.Context(), root.timeout)
			defer cancel()

			size, err := client.Size(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "employees: %d\njobs: %d\ndepartments: %d\n",
				size.Employees, size.Jobs, size.Departments)
			return nil
		},
	}
}

func formatEmployee(e agenda.Employee) string {
	return fmt.Sprintf("employee %d: %s %s, hired %s, job %d (%s), department %d (%s)",
		e.ID(), e.FirstName(), e.LastName(), e.HiringDate().Format(agenda.DateLayout),
		e.Job().ID(), e.Job().Name(), e.Department().ID(), e.Department().Name())
}
