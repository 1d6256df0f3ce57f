package cmd

import (
	"encoding/json"
	"errors"
	"fmt"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/examforge/examforge/internal/activity"
	"github.com/examforge/examforge/internal/render"
)

var activitiesCmd = &cobra.Command{
	Use:     "activities",
	Aliases: []string{"activity", "a"},
	Short:   "List and manage stored activities",
}

var activitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored activities",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		owner, _ := f.GetString("owner")
		status, _ := f.GetString("status")
		query, _ := f.GetString("query")
		limit, _ := f.GetInt("limit")
		asJSON, _ := f.GetBool("json")

		if status != "" && !activity.Status(status).Valid() {
			return fmt.Errorf("unknown status %q", status)
		}

		return withActivities(func(svc *activity.Service) error {
			as, err := svc.List(cmd.Context(), activity.ListOptions{
				OwnerID: owner,
				Status:  activity.Status(status),
				Query:   query,
				Limit:   limit,
			})
			if err != nil {
				return fmt.Errorf("list activities: %w", err)
			}
			if asJSON {
				return printJSON(cmd, as)
			}
			lipgloss.Fprintln(cmd.OutOrStdout(), render.Table(as))
			return nil
		})
	},
}

var activitiesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show an activity with its questions and versions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		owner, _ := f.GetString("owner")
		answers, _ := f.GetBool("answers")
		asJSON, _ := f.GetBool("json")

		return withActivities(func(svc *activity.Service) error {
			a, err := svc.Get(cmd.Context(), owner, args[0])
			if err != nil {
				return activityErr(args[0], err)
			}
			if asJSON {
				return printJSON(cmd, a)
			}
			lipgloss.Fprintln(cmd.OutOrStdout(), render.Activity(a, render.Options{ShowAnswers: answers}))
			return nil
		})
	},
}

var activitiesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an activity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		return withActivities(func(svc *activity.Service) error {
			if err := svc.Delete(cmd.Context(), owner, args[0]); err != nil {
				return activityErr(args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted activity %s\n", args[0])
			return nil
		})
	},
}

var activitiesPublishCmd = statusCmd("publish", activity.StatusPublished)
var activitiesArchiveCmd = statusCmd("archive", activity.StatusArchived)

func statusCmd(verb string, st activity.Status) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: fmt.Sprintf("Mark an activity as %s", st),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, _ := cmd.Flags().GetString("owner")
			return withActivities(func(svc *activity.Service) error {
				a, err := svc.Replace(cmd.Context(), owner, args[0], activity.Update{Status: &st})
				if err != nil {
					return activityErr(args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Activity %s is now %s\n", a.ID, a.Status)
				return nil
			})
		},
	}
}

var activitiesRegenerateCmd = &cobra.Command{
	Use:   "regenerate <id>",
	Short: "Replace an activity's versions with fresh shuffles of its base set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		owner, _ := f.GetString("owner")
		count, _ := f.GetInt("count")
		withKey, _ := f.GetBool("answer-key")

		return withActivities(func(svc *activity.Service) error {
			a, err := svc.RegenerateVersions(cmd.Context(), owner, args[0], count, withKey)
			if err != nil {
				return activityErr(args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Activity %s now has %d versions\n", a.ID, len(a.Content.Versions))
			return nil
		})
	},
}

func withActivities(fn func(*activity.Service) error) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(activity.NewService(s.ActivityRepo()))
}

func activityErr(id string, err error) error {
	if errors.Is(err, activity.ErrNotFound) {
		return fmt.Errorf("activity %s not found", id)
	}
	return err
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	activitiesCmd.PersistentFlags().String("owner", "", "Restrict to activities of this owner")

	activitiesListCmd.Flags().String("status", "", "Filter by status: draft, published, archived")
	activitiesListCmd.Flags().StringP("query", "q", "", "Fuzzy match on title and topics")
	activitiesListCmd.Flags().IntP("limit", "n", 50, "Maximum number of activities")
	activitiesListCmd.Flags().Bool("json", false, "Print JSON")

	activitiesShowCmd.Flags().Bool("answers", false, "Show answers and answer keys")
	activitiesShowCmd.Flags().Bool("json", false, "Print JSON")

	activitiesRegenerateCmd.Flags().Int("count", 2, "Number of versions")
	activitiesRegenerateCmd.Flags().Bool("answer-key", true, "Derive answer keys for each version")

	activitiesCmd.AddCommand(activitiesListCmd, activitiesShowCmd, activitiesDeleteCmd,
		activitiesPublishCmd, activitiesArchiveCmd, activitiesRegenerateCmd)
}
