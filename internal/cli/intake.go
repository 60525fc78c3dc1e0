package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-pawhealth/pkg/fields"
	"github.com/goliatone/go-pawhealth/pkg/intake"
	"github.com/goliatone/go-pawhealth/pkg/merge"
	"github.com/goliatone/go-pawhealth/pkg/render"
	"github.com/goliatone/go-pawhealth/pkg/renderers/html"
	"github.com/goliatone/go-pawhealth/pkg/renderers/tui"
)

func (a *App) intakeCmd() *cobra.Command {
	var (
		dogID  string
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "intake",
		Short: "Fill the onboarding form for a new or existing dog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, c, err := a.signedInClient(ctx)
			if err != nil {
				return err
			}
			defer a.flush(sess)

			loaded, err := intake.Load(ctx, c, dogID, intake.WithLogger(a.logger))
			if err != nil {
				sess.Messages.Error(err)
				return err
			}
			form := loaded.Form
			renderer := tui.New(
				tui.WithPromptDriver(a.prompts()),
				tui.WithTheme(tui.Theme{ErrorPrefix: "! "}),
			)

			var errs map[string][]string
			for {
				if err := renderer.Fill(ctx, form, errs); err != nil {
					return err
				}
				if dryRun {
					if dogID == "" {
						return a.printJSON(form.CreatePayload())
					}
					return a.printJSON(form.UpdatePayload())
				}

				dog, err := form.Submit(ctx, c, dogID)
				if err == nil {
					sess.Messages.Success(fmt.Sprintf("Saved %s", dog.Name))
					return nil
				}
				mapping := render.MapError(render.NewForm("", form.Fields()), err)
				if len(mapping.Fields) == 0 {
					sess.Messages.Error(err)
					return err
				}
				for _, message := range mapping.Form {
					sess.Messages.Info(message)
				}
				a.flush(sess)
				retry, perr := a.prompts().Confirm(ctx, tui.ConfirmConfig{Message: "Fix the highlighted answers?", Default: true})
				if perr != nil {
					return perr
				}
				if !retry {
					return err
				}
				errs = mapping.Fields
			}
		},
	}
	cmd.Flags().StringVar(&dogID, "dog", "", "Edit the dog with this id instead of creating one")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the request payload instead of saving")
	return cmd
}

func (a *App) previewCmd() *cobra.Command {
	var (
		dogID    string
		offline  bool
		output   string
		renderer string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the onboarding form as an HTML page or walk it in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			list, err := a.previewFields(ctx, dogID, offline)
			if err != nil {
				return err
			}
			registry, err := a.renderers()
			if err != nil {
				return err
			}
			r, err := registry.Get(renderer)
			if err != nil {
				return err
			}
			form := render.NewForm("Tell us about your dog", list)
			form.ID = "onboarding"
			opts := render.RenderOptions{Theme: a.cfg.Brand.RendererConfig()}
			if dogID != "" {
				opts.Hidden = append(opts.Hidden, render.DogID(dogID))
			}
			page, err := r.Render(ctx, form, opts)
			if err != nil {
				return err
			}
			return writeOutput(output, a.out, page)
		},
	}
	cmd.Flags().StringVar(&dogID, "dog", "", "Prefill the form from this dog")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the built-in default onboarding form")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the page to a file instead of stdout")
	cmd.Flags().StringVar(&renderer, "renderer", "", "Renderer to use: html (default) or tui")
	return cmd
}

// renderers lists the preview renderers, html first so it is the default.
func (a *App) renderers() (*render.Registry, error) {
	page, err := html.New()
	if err != nil {
		return nil, err
	}
	registry := render.NewRegistry()
	registry.MustRegister(page)
	registry.MustRegister(tui.New(tui.WithPromptDriver(a.prompts())))
	return registry, nil
}

func (a *App) previewFields(ctx context.Context, dogID string, offline bool) (fields.List, error) {
	if offline {
		decls, err := fields.DefaultOnboarding()
		if err != nil {
			return nil, err
		}
		return merge.Merge(decls, nil), nil
	}
	_, c, err := a.signedInClient(ctx)
	if err != nil {
		return nil, err
	}
	loaded, err := intake.Load(ctx, c, dogID, intake.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	return loaded.Form.Fields(), nil
}
