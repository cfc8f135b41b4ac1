package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"cutroom/internal/render"
	"cutroom/internal/store"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Submit and track render jobs",
	}

	renderCmd.AddCommand(newRenderSubmitCommand(ctx))
	renderCmd.AddCommand(newRenderStatusCommand(ctx))
	renderCmd.AddCommand(newRenderWatchCommand(ctx))
	renderCmd.AddCommand(newRenderRetryCommand(ctx))
	renderCmd.AddCommand(newRenderCancelCommand(ctx))
	renderCmd.AddCommand(newRenderJobsCommand(ctx))

	return renderCmd
}

func newRenderSubmitCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string

	cmd := &cobra.Command{
		Use:   "submit <session-id>",
		Short: "Submit a render job for a locked cut list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := render.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			return ctx.withStore(func(st *store.Store) error {
				orchestrator, err := ctx.newOrchestrator(st)
				if err != nil {
					return err
				}
				job, err := orchestrator.Submit(cmd.Context(), args[0], format)
				if err != nil {
					if job != nil {
						fmt.Fprintf(cmd.OutOrStdout(), "Job %s recorded as %s; retry with `cutroom render retry %s`\n",
							job.ID, job.Status, job.ID)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted job %s (%s) as farm job %s\n",
					job.ID, job.Format, job.FarmJobID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", string(render.FormatFull), "Deliverable format")
	return cmd
}

func printJob(cmd *cobra.Command, job *render.Job) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Job:      %s (session %s)\n", job.ID, job.SessionID)
	fmt.Fprintf(out, "Format:   %s (%s)\n", job.Format, job.Format.AspectRatio())
	fmt.Fprintf(out, "Status:   %s, %d%%, attempt %d\n", job.Status, job.Progress, job.Attempts)
	if job.FarmJobID != "" {
		fmt.Fprintf(out, "Farm job: %s\n", job.FarmJobID)
	}
	if job.OutputURL != "" {
		fmt.Fprintf(out, "Output:   %s\n", job.OutputURL)
	}
	if job.OutputThumbnailURL != "" {
		fmt.Fprintf(out, "Thumb:    %s\n", job.OutputThumbnailURL)
	}
	if job.OutputSubtitlesURL != "" {
		fmt.Fprintf(out, "Subs:     %s\n", job.OutputSubtitlesURL)
	}
	if job.Status == render.StatusCompleted && job.DurationMs > 0 {
		fmt.Fprintf(out, "Media:    %s", (time.Duration(job.DurationMs) * time.Millisecond).String())
		if job.Resolution != "" {
			fmt.Fprintf(out, ", %s", job.Resolution)
		}
		if job.Fps > 0 {
			fmt.Fprintf(out, " @ %g fps", job.Fps)
		}
		if job.FileSizeBytes > 0 {
			fmt.Fprintf(out, ", %d bytes", job.FileSizeBytes)
		}
		fmt.Fprintln(out)
	}
	if job.RenderDurationMs > 0 {
		fmt.Fprintf(out, "Rendered: in %s\n", (time.Duration(job.RenderDurationMs) * time.Millisecond).String())
	}
	if job.Error != "" {
		fmt.Fprintf(out, "Error:    %s\n", job.Error)
	}
}

func newRenderStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Refresh and show one render job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				orchestrator, err := ctx.newOrchestrator(st)
				if err != nil {
					return err
				}
				job, err := orchestrator.Refresh(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printJob(cmd, job)
				return nil
			})
		},
	}
}

func newRenderWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <job-id>",
		Short: "Poll a render job until it settles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				orchestrator, err := ctx.newOrchestrator(st)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				job, err := orchestrator.Watch(cmd.Context(), args[0], func(job *render.Job) {
					fmt.Fprintf(out, "%s  %s %3d%%\n", time.Now().Format(time.TimeOnly), job.Status, job.Progress)
				})
				if err != nil {
					return err
				}

				notify := ctx.notifier()
				switch job.Status {
				case render.StatusCompleted:
					_ = notify.NotifyRenderCompleted(cmd.Context(), job.ID, job.OutputURL)
				case render.StatusFailed:
					_ = notify.NotifyRenderFailed(cmd.Context(), job.ID, job.Error)
				}

				printJob(cmd, job)
				return nil
			})
		},
	}
}

func newRenderRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <job-id>",
		Short: "Retry a failed render job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				orchestrator, err := ctx.newOrchestrator(st)
				if err != nil {
					return err
				}
				job, err := orchestrator.Retry(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried job %s (attempt %d) as farm job %s\n",
					job.ID, job.Attempts, job.FarmJobID)
				return nil
			})
		},
	}
}

func newRenderCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a queued or processing render job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				orchestrator, err := ctx.newOrchestrator(st)
				if err != nil {
					return err
				}
				job, err := orchestrator.Cancel(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s\n", job.ID)
				return nil
			})
		},
	}
}

func newRenderJobsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs <session-id>",
		Short: "List render jobs for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				orchestrator, err := ctx.newOrchestrator(st)
				if err != nil {
					return err
				}
				jobs, err := orchestrator.JobsForSession(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(jobs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No render jobs for this session")
					return nil
				}

				rows := make([][]string, 0, len(jobs))
				for _, job := range jobs {
					rows = append(rows, []string{
						job.ID,
						string(job.Format),
						string(job.Status),
						fmt.Sprintf("%d%%", job.Progress),
						fmt.Sprintf("%d", job.Attempts),
						job.CreatedAt.Format(time.DateTime),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"Job", "Format", "Status", "Progress", "Attempts", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
}
