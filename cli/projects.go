package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"taskboard/backend"
	"taskboard/config"
	"taskboard/domain"
)

type projectsOptions struct {
	email    string
	password string
	token    string
	jsonOut  bool
}

func newProjectsCmd() *cobra.Command {
	var opts projectsOptions
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Print every project with its derived progress and status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}
			if cfg.BackendBaseURL == "" {
				return fmt.Errorf("missing %s", config.KeyBackendBaseURL)
			}
			logger := newLogger(cfg.Debug)
			logger.SetOutput(cmd.ErrOrStderr())
			client := backend.New(cfg.BackendBaseURL, &http.Client{Timeout: cfg.HTTPTimeout}, logger)
			return printProjects(cmd.Context(), client, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.email, "email", "", "account email")
	cmd.Flags().StringVar(&opts.password, "password", "", "account password")
	cmd.Flags().StringVar(&opts.token, "token", "", "bearer token instead of email and password")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "output as JSON")
	return cmd
}

// signIn returns the token and profile for opts.
func signIn(ctx context.Context, client *backend.Client, opts projectsOptions) (string, domain.User, error) {
	if opts.token != "" {
		user, err := client.As(backend.StaticToken(opts.token)).Auth.Me(ctx)
		return opts.token, user, err
	}
	if opts.email == "" || opts.password == "" {
		return "", domain.User{}, errors.New("either --token or --email and --password are required")
	}
	resp, err := client.As(backend.StaticToken("")).Auth.Login(ctx, domain.Credentials{Email: opts.email, Password: opts.password})
	if err != nil {
		return "", domain.User{}, err
	}
	return resp.Token, resp.User, nil
}

func printProjects(ctx context.Context, client *backend.Client, opts projectsOptions, w io.Writer) error {
	token, user, err := signIn(ctx, client, opts)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	projects, err := client.As(backend.StaticToken(token)).Projects.List(ctx)
	if err != nil {
		return fmt.Errorf("list projects: %w", err)
	}
	out := make([]domain.ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, domain.NewProjectView(p, user.ID))
	}

	if opts.jsonOut {
		data, err := sonic.ConfigStd.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPROGRESS\tVIEW\tSTATUS")
	for _, v := range out {
		fmt.Fprintf(tw, "%d\t%s\t%d%%\t%s\t%s\n", v.ID, v.Name, v.Progress, v.ViewStatus, v.Status)
	}
	return tw.Flush()
}
