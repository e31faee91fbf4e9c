package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/nxncube"
	"github.com/SeamusWaldron/nxncube/internal/planfile"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

var (
	replayID    string
	replayLast  bool
	replayPlan  string
	replaySteps bool
	replayShow  bool
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a plan file or a recorded session",
	Long: `Rebuild a lattice by applying moves without animation.

With --plan the plan file is applied to a solved lattice. With --id or --last
the recorded session is rebuilt: its scramble plan first, then every move
that was not undone. When the session has a snapshot taken after its last
move, the rebuilt grid positions are checked against it.`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayID, "id", "", "Session ID to replay")
	replayCmd.Flags().BoolVar(&replayLast, "last", false, "Replay the most recent session")
	replayCmd.Flags().StringVar(&replayPlan, "plan", "", "Plan file to apply")
	replayCmd.Flags().BoolVar(&replaySteps, "steps", false, "Print every move as it is applied")
	replayCmd.Flags().BoolVar(&replayShow, "show", false, "Print the final lattice layers")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replayPlan != "" {
		return replayPlanFile(replayPlan)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessionRepo := storage.NewSessionRepository(db)
	var idArgs []string
	if replayID != "" {
		idArgs = []string{replayID}
	}
	sessionID, err := resolveSessionID(sessionRepo, idArgs, replayLast)
	if err != nil {
		return err
	}

	session, err := sessionRepo.Get(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", sessionID)
	}

	rows, err := storage.NewMoveRepository(db).GetBySession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get moves: %w", err)
	}

	cube, err := nxncube.NewCube(session.Dimension)
	if err != nil {
		return err
	}

	if session.PlanText != nil && *session.PlanText != "" {
		if err := cube.ApplyNotation(*session.PlanText); err != nil {
			return fmt.Errorf("failed to apply scramble: %w", err)
		}
	}

	fmt.Printf("Replaying %s (%dx%dx%d)\n", session.SessionID, session.Dimension, session.Dimension, session.Dimension)

	tracker := nxncube.NewTracker(cube)
	if err := applyTracked(tracker, storage.ToRecords(rows)); err != nil {
		return err
	}

	printReplayResult(tracker)

	latest, err := storage.NewSnapshotRepository(db).GetLatest(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}
	if latest != nil && latest.MoveCount == len(rows) {
		mismatched := 0
		for _, info := range latest.Cubies {
			grid, ok := cube.Grid(info.ID)
			if !ok || grid != info.Grid {
				mismatched++
			}
		}
		if mismatched == 0 {
			fmt.Printf("Matches snapshot %q\n", latest.Label)
		} else {
			fmt.Printf("Differs from snapshot %q in %d cubies\n", latest.Label, mismatched)
		}
	}

	if replayShow {
		fmt.Println()
		fmt.Print(cube.String())
	}
	return nil
}

func replayPlanFile(path string) error {
	f, err := planfile.Load(path)
	if err != nil {
		return err
	}
	plan, err := f.Plan()
	if err != nil {
		return err
	}

	cube, err := nxncube.NewCube(f.Dimension)
	if err != nil {
		return err
	}

	fmt.Printf("Applying %s (%dx%dx%d, %d moves)\n", path, f.Dimension, f.Dimension, f.Dimension, len(plan))

	tracker := nxncube.NewTracker(cube)
	if err := applyTracked(tracker, plan); err != nil {
		return err
	}
	printReplayResult(tracker)

	if replayShow {
		fmt.Println()
		fmt.Print(cube.String())
	}
	return nil
}

func applyTracked(tracker *nxncube.Tracker, moves []nxncube.Move) error {
	for i, m := range moves {
		if err := tracker.ApplyMove(m); err != nil {
			return fmt.Errorf("move %d (%s): %w", i+1, m.Notation(), err)
		}
		if replaySteps {
			mark := ""
			if tracker.IsSolved() {
				mark = "  solved"
			}
			fmt.Printf("%4d  %s%s\n", i+1, m.Notation(), mark)
		}
	}
	return nil
}

func printReplayResult(tracker *nxncube.Tracker) {
	fmt.Printf("Moves applied: %d\n", tracker.MoveCount())
	if at := tracker.SolvedAt(); at >= 0 {
		fmt.Printf("First solved after move %d\n", at)
	}
	if tracker.IsSolved() {
		fmt.Println("Final state: solved")
	} else {
		fmt.Println("Final state: unsolved")
	}
}
