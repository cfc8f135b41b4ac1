package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cutroom/internal/edl"
	"cutroom/internal/media"
	"cutroom/internal/store"
	"cutroom/internal/timeline"
)

func newEDLCommand(ctx *commandContext) *cobra.Command {
	edlCmd := &cobra.Command{
		Use:   "edl",
		Short: "Manage the canonical cut list",
	}

	edlCmd.AddCommand(newEDLImportCommand(ctx))
	edlCmd.AddCommand(newEDLShowCommand(ctx))
	edlCmd.AddCommand(newEDLValidateCommand(ctx))
	edlCmd.AddCommand(newEDLApproveCommand(ctx))
	edlCmd.AddCommand(newEDLLockCommand(ctx))
	edlCmd.AddCommand(newEDLExportCommand(ctx))
	edlCmd.AddCommand(newEDLNudgeCommand(ctx))
	edlCmd.AddCommand(newEDLSplitCommand(ctx))
	edlCmd.AddCommand(newEDLDeleteCutCommand(ctx))
	edlCmd.AddCommand(newEDLSetCameraCommand(ctx))
	edlCmd.AddCommand(newEDLBulkApproveCommand(ctx))

	return edlCmd
}

func newEDLImportCommand(ctx *commandContext) *cobra.Command {
	var frameRate float64

	cmd := &cobra.Command{
		Use:   "import <session-id> [document.json]",
		Short: "Create a draft cut list from a synced session, or import one from JSON",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]
			return ctx.withStore(func(st *store.Store) error {
				var doc *edl.Document

				if len(args) == 2 {
					data, err := os.ReadFile(args[1])
					if err != nil {
						return fmt.Errorf("read document: %w", err)
					}
					var parsed edl.Document
					if err := json.Unmarshal(data, &parsed); err != nil {
						return fmt.Errorf("parse document %s: %w", args[1], err)
					}
					if parsed.SessionID == "" {
						parsed.SessionID = sessionID
					}
					if parsed.SessionID != sessionID {
						return fmt.Errorf("document belongs to session %s, not %s", parsed.SessionID, sessionID)
					}
					doc = &parsed
				} else {
					session, err := st.GetSession(cmd.Context(), sessionID)
					if err != nil {
						return err
					}
					seeded, err := edl.NewDocument(session, frameRate, time.Now().UTC())
					if err != nil {
						return err
					}
					doc = seeded
				}

				if err := st.PutEDL(cmd.Context(), doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored %s cut list for session %s (%d cuts)\n",
					doc.Status, sessionID, len(doc.Tracks.Program))
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&frameRate, "frame-rate", edl.DefaultFrameRate, "Timeline frame rate for seeded documents")
	return cmd
}

func newEDLShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the cut list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				doc, err := st.GetEDL(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, doc)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session:  %s\n", doc.SessionID)
				fmt.Fprintf(out, "Status:   %s (v%d)\n", doc.Status, doc.Version)
				fmt.Fprintf(out, "Program:  %d cuts, %s, avg shot %s\n",
					doc.Metrics.TotalCuts,
					(time.Duration(doc.Metrics.ProgramLengthMs) * time.Millisecond).String(),
					(time.Duration(doc.Metrics.AvgShotLengthMs) * time.Millisecond).String())
				if doc.Metrics.OperatorOverride > 0 {
					fmt.Fprintf(out, "Operator: %d cut(s) touched\n", doc.Metrics.OperatorOverride)
				}

				rows := make([][]string, 0, len(doc.Tracks.Program))
				for _, cut := range doc.Tracks.Program {
					rows = append(rows, []string{
						cut.ID,
						fmt.Sprintf("%d", cut.StartMs),
						fmt.Sprintf("%d", cut.EndMs),
						string(cut.Camera),
						fmt.Sprintf("%.2f", cut.Confidence),
						string(cut.Reason),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Cut", "Start (ms)", "End (ms)", "Camera", "Confidence", "Reason"},
					rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func newEDLValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <session-id>",
		Short: "Validate the program track",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				doc, err := st.GetEDL(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if err := edl.ValidateProgram(doc.Tracks.Program, doc.DurationMs); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cut list for session %s is valid (%d cuts)\n",
					args[0], len(doc.Tracks.Program))
				return nil
			})
		},
	}
}

func newEDLApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "approve <session-id>",
		Short: "Advance the cut list from draft to approved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				doc, err := edl.Approve(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cut list for session %s is now %s (v%d)\n",
					args[0], doc.Status, doc.Version)
				return nil
			})
		},
	}
}

func newEDLLockCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "lock <session-id>",
		Short: "Lock the approved cut list for rendering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				doc, err := edl.Lock(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cut list for session %s is now %s (v%d)\n",
					args[0], doc.Status, doc.Version)
				return nil
			})
		},
	}
}

func newEDLExportCommand(ctx *commandContext) *cobra.Command {
	var formatFlag string
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export the cut list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := edl.ParseFormat(formatFlag)
			if err != nil {
				return err
			}

			return ctx.withStore(func(st *store.Store) error {
				doc, err := st.GetEDL(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				payload, err := edl.Export(doc, format)
				if err != nil {
					return err
				}

				target := strings.TrimSpace(outputPath)
				if target == "" {
					_, err := cmd.OutOrStdout().Write(payload)
					return err
				}
				if err := os.WriteFile(target, payload, 0o644); err != nil {
					return fmt.Errorf("write export: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s cut list to %s\n", format, target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&formatFlag, "format", "f", "fcpxml", "Export format (json, fcpxml)")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

// editProgram runs one editor operation under the process edit lock and saves
// the result.
func editProgram(ctx *commandContext, cmd *cobra.Command, sessionID string, op func(*timeline.Editor) error) error {
	return ctx.withEditLock(func() error {
		return ctx.withStore(func(st *store.Store) error {
			doc, err := st.GetEDL(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			editor, err := timeline.NewEditor(doc)
			if err != nil {
				return err
			}
			if err := op(editor); err != nil {
				return err
			}
			saved, err := editor.Save(cmd.Context(), st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved cut list for session %s (v%d, %d cuts)\n",
				sessionID, saved.Version, len(saved.Tracks.Program))
			return nil
		})
	})
}

func newEDLNudgeCommand(ctx *commandContext) *cobra.Command {
	var startDelta int64
	var endDelta int64

	cmd := &cobra.Command{
		Use:   "nudge <session-id> <cut-id>",
		Short: "Nudge a cut boundary by milliseconds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if startDelta == 0 && endDelta == 0 {
				return fmt.Errorf("provide --start and/or --end delta in milliseconds")
			}
			return editProgram(ctx, cmd, args[0], func(editor *timeline.Editor) error {
				if startDelta != 0 {
					if err := editor.NudgeStart(args[1], startDelta); err != nil {
						return err
					}
				}
				if endDelta != 0 {
					if err := editor.NudgeEnd(args[1], endDelta); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&startDelta, "start", 0, "Delta for the cut start in milliseconds")
	cmd.Flags().Int64Var(&endDelta, "end", 0, "Delta for the cut end in milliseconds")
	return cmd
}

func newEDLSplitCommand(ctx *commandContext) *cobra.Command {
	var playheadMs int64

	cmd := &cobra.Command{
		Use:   "split <session-id>",
		Short: "Split the cut under the playhead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editProgram(ctx, cmd, args[0], func(editor *timeline.Editor) error {
				return editor.SplitAt(playheadMs)
			})
		},
	}

	cmd.Flags().Int64Var(&playheadMs, "at", 0, "Playhead position in milliseconds")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func newEDLDeleteCutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete-cut <session-id> <cut-id>",
		Short: "Remove a cut from the program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editProgram(ctx, cmd, args[0], func(editor *timeline.Editor) error {
				return editor.Delete(args[1])
			})
		},
	}
}

func newEDLSetCameraCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set-camera <session-id> <cut-id> <camera>",
		Short: "Switch the camera for a cut",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			camera, err := media.ParseCamera(args[2])
			if err != nil {
				return err
			}
			return editProgram(ctx, cmd, args[0], func(editor *timeline.Editor) error {
				return editor.SetCamera(args[1], camera)
			})
		},
	}
}

func newEDLBulkApproveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk-approve <session-id>",
		Short: "Mark all high-confidence auto cuts as operator approved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editProgram(ctx, cmd, args[0], func(editor *timeline.Editor) error {
				count := editor.BulkApproveHighConfidence()
				fmt.Fprintf(cmd.OutOrStdout(), "Approved %d cut(s)\n", count)
				return nil
			})
		},
	}
}
