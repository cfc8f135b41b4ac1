package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cutroom/internal/media"
	"cutroom/internal/store"
)

func newSessionCommand(ctx *commandContext) *cobra.Command {
	sessionCmd := &cobra.Command{
		Use:   "session",
		Short: "Manage recording sessions",
	}

	sessionCmd.AddCommand(newSessionAddCommand(ctx))
	sessionCmd.AddCommand(newSessionListCommand(ctx))
	sessionCmd.AddCommand(newSessionShowCommand(ctx))

	return sessionCmd
}

func newSessionAddCommand(ctx *commandContext) *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a recording session from a JSON manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest := strings.TrimSpace(manifestPath)
			if manifest == "" {
				return fmt.Errorf("--manifest is required")
			}
			data, err := os.ReadFile(manifest)
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}

			var session media.Session
			if err := json.Unmarshal(data, &session); err != nil {
				return fmt.Errorf("parse manifest %s: %w", manifest, err)
			}

			return ctx.withStore(func(st *store.Store) error {
				if err := st.CreateSession(cmd.Context(), &session); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered session %s with %d camera(s)\n",
					session.ID, len(session.Assets))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "", "Path to the session manifest JSON")
	_ = cmd.MarkFlagRequired("manifest")
	return cmd
}

func newSessionListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				sessions, err := st.ListSessions(cmd.Context())
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No sessions registered")
					return nil
				}

				rows := make([][]string, 0, len(sessions))
				for _, session := range sessions {
					rows = append(rows, []string{
						session.ID,
						session.Title,
						string(session.Status),
						string(session.OperatorStatus),
						cameraList(session),
						session.RecordedAt.Format(time.DateOnly),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Title", "Status", "Operator", "Cameras", "Recorded"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}

func newSessionShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show one session with its sync results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(st *store.Store) error {
				session, err := st.GetSession(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, session)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Session:   %s (%s)\n", session.ID, session.Title)
				fmt.Fprintf(out, "Status:    %s / operator %s\n", session.Status, session.OperatorStatus)
				fmt.Fprintf(out, "Duration:  %s\n", (time.Duration(session.DurationMs) * time.Millisecond).String())
				if session.MasterCamera != "" {
					fmt.Fprintf(out, "Master:    %s\n", session.MasterCamera)
				}
				fmt.Fprintf(out, "Reliable:  %s\n", yesNo(session.AllReliable))

				if len(session.SyncResults) > 0 {
					cams := make([]media.Camera, 0, len(session.SyncResults))
					for cam := range session.SyncResults {
						cams = append(cams, cam)
					}
					sort.Slice(cams, func(i, j int) bool { return cams[i] < cams[j] })

					rows := make([][]string, 0, len(cams))
					for _, cam := range cams {
						result := session.SyncResults[cam]
						detail := ""
						if result.Error != "" {
							detail = result.Error
						}
						rows = append(rows, []string{
							string(cam),
							fmt.Sprintf("%d ms", result.OffsetMs),
							fmt.Sprintf("%.2f", result.Confidence),
							string(result.Classification),
							detail,
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Camera", "Offset", "Confidence", "Classification", "Detail"},
						rows,
						[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft, alignLeft},
					))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON")
	return cmd
}

func cameraList(session *media.Session) string {
	cams := session.CamerasPresent()
	parts := make([]string, 0, len(cams))
	for _, cam := range cams {
		parts = append(parts, string(cam))
	}
	return strings.Join(parts, ",")
}
