package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cutroom/internal/media"
	"cutroom/internal/store"
	"cutroom/internal/syncengine"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Detect and review audio offsets",
	}

	syncCmd.AddCommand(newSyncRunCommand(ctx))
	syncCmd.AddCommand(newSyncApproveCommand(ctx))
	syncCmd.AddCommand(newSyncCorrectCommand(ctx))

	return syncCmd
}

func newSyncRunCommand(ctx *commandContext) *cobra.Command {
	var masterFlag string

	cmd := &cobra.Command{
		Use:   "run <session-id>",
		Short: "Run offset detection for a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID := args[0]

			var master media.Camera
			if trimmed := strings.TrimSpace(masterFlag); trimmed != "" {
				parsed, err := media.ParseCamera(trimmed)
				if err != nil {
					return err
				}
				master = parsed
			}

			return ctx.withStore(func(st *store.Store) error {
				engine, err := ctx.newEngine(st)
				if err != nil {
					return err
				}

				result, err := engine.DetectOffsets(cmd.Context(), sessionID, master)
				notify := ctx.notifier()
				if err != nil {
					_ = notify.NotifySyncFailed(cmd.Context(), sessionID, err)
					return err
				}
				_ = notify.NotifySyncCompleted(cmd.Context(), sessionID, result.AllReliable)

				printSyncResult(cmd, result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&masterFlag, "master", "", "Force the master camera (A, B, or C)")
	return cmd
}

func printSyncResult(cmd *cobra.Command, result *syncengine.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Master camera: %s\n", result.MasterCamera)

	cams := make([]media.Camera, 0, len(result.Results))
	for cam := range result.Results {
		cams = append(cams, cam)
	}
	sort.Slice(cams, func(i, j int) bool { return cams[i] < cams[j] })

	rows := make([][]string, 0, len(cams))
	for _, cam := range cams {
		res := result.Results[cam]
		detail := res.Error
		rows = append(rows, []string{
			string(cam),
			fmt.Sprintf("%d ms", res.OffsetMs),
			fmt.Sprintf("%.2f", res.Confidence),
			string(res.Classification),
			detail,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Camera", "Offset", "Confidence", "Classification", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
	))

	if result.AllReliable {
		fmt.Fprintln(out, "All offsets reliable; approve with `cutroom sync approve`")
	} else {
		fmt.Fprintln(out, "Some cameras need review; inspect and correct with `cutroom sync correct`")
	}
}

func newSyncApproveCommand(ctx *commandContext) *cobra.Command {
	var approvedBy string
	var notes string

	cmd := &cobra.Command{
		Use:   "approve <session-id>",
		Short: "Approve detected offsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				session, err := syncengine.Approve(cmd.Context(), st, args[0], approvedBy, notes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s approved; status %s\n", session.ID, session.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&approvedBy, "by", "", "Name of the approving operator")
	cmd.Flags().StringVar(&notes, "notes", "", "Review notes")
	return cmd
}

func newSyncCorrectCommand(ctx *commandContext) *cobra.Command {
	var correctedBy string
	var notes string
	var offsetFlags []string

	cmd := &cobra.Command{
		Use:   "correct <session-id>",
		Short: "Apply manual offset corrections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			offsets, err := parseOffsetFlags(offsetFlags)
			if err != nil {
				return err
			}
			if len(offsets) == 0 {
				return fmt.Errorf("at least one --offset CAMERA=MS is required")
			}

			return ctx.withStore(func(st *store.Store) error {
				session, err := syncengine.Correct(cmd.Context(), st, args[0], offsets, correctedBy, notes)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session %s corrected; status %s\n", session.ID, session.Status)
				return nil
			})
		},
	}

	cmd.Flags().StringArrayVar(&offsetFlags, "offset", nil, "Manual offset as CAMERA=MS (repeatable)")
	cmd.Flags().StringVar(&correctedBy, "by", "", "Name of the correcting operator")
	cmd.Flags().StringVar(&notes, "notes", "", "Review notes")
	return cmd
}

func parseOffsetFlags(flags []string) (map[media.Camera]int64, error) {
	offsets := make(map[media.Camera]int64, len(flags))
	for _, flag := range flags {
		camText, msText, ok := strings.Cut(flag, "=")
		if !ok {
			return nil, fmt.Errorf("invalid offset %q (expected CAMERA=MS)", flag)
		}
		cam, err := media.ParseCamera(camText)
		if err != nil {
			return nil, err
		}
		ms, err := strconv.ParseInt(strings.TrimSpace(msText), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid offset milliseconds %q", msText)
		}
		offsets[cam] = ms
	}
	return offsets, nil
}
