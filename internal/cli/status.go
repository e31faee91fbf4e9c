package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/nxncube/internal/analysis"
	"github.com/SeamusWaldron/nxncube/internal/snapshot"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recorder status and progress",
	Long: `Display the database location, the active session, the last saved
snapshot, and trends over solved sessions.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	stateFile, err := openStateFile()
	if err != nil {
		return err
	}

	state := stateFile.State()

	fmt.Println("nxncube Status")
	fmt.Println("==============")
	fmt.Println()

	// Database info
	path := getDBPath()
	if path == "" {
		path = state.DBPath
	}
	if path == "" {
		path, _ = storage.DefaultDBPath()
	}
	fmt.Printf("Database: %s\n", path)
	fmt.Printf("State:    %s\n", stateFile.Path())
	fmt.Println()

	// Active session
	if state.ActiveSessionID != "" {
		fmt.Printf("Active session: %s\n", state.ActiveSessionID)
		fmt.Println("  (Use 'nxncube play --resume' to continue or 'nxncube sessions end' to close it)")
	} else {
		fmt.Println("No active session")
	}

	if state.LastSnapshotPath != "" {
		h, err := snapshot.ReadHeader(state.LastSnapshotPath)
		if err != nil {
			fmt.Printf("Last snapshot: %s (unreadable: %v)\n", state.LastSnapshotPath, err)
		} else {
			fmt.Printf("Last snapshot: %s (%dx%dx%d, saved %s)\n",
				state.LastSnapshotPath, h.Dimension, h.Dimension, h.Dimension,
				h.SavedAt.Local().Format("2006-01-02 15:04:05"))
		}
	}
	fmt.Println()

	db, err := storage.Open(path)
	if err != nil {
		fmt.Printf("Database unavailable: %v\n", err)
		return nil
	}
	defer db.Close()

	sessionRepo := storage.NewSessionRepository(db)
	sessions, err := sessionRepo.List(10000)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	moveCounts := make(map[string]int, len(sessions))
	for _, s := range sessions {
		n, err := sessionRepo.GetMoveCount(s.SessionID)
		if err != nil {
			return fmt.Errorf("failed to count moves: %w", err)
		}
		moveCounts[s.SessionID] = n
	}

	report := analysis.AnalyzeTrends(sessions, moveCounts)

	fmt.Printf("Total sessions: %d (%d solved)\n", report.TotalSessions, report.SolvedSessions)
	if len(sessions) > 0 {
		fmt.Printf("Last session:   %s\n", sessions[0].StartedAt.Format(time.RFC3339))
	}
	if report.SolvedSessions > 0 {
		printTrends(report)
	}

	patterns, err := sessionPatterns(db, sessions, 3)
	if err != nil {
		return err
	}
	if len(patterns.TopNGrams) > 0 {
		fmt.Println()
		fmt.Println("Recurring Sequences")
		fmt.Println("-------------------")
		for n := 2; n <= 4; n++ {
			for _, g := range patterns.TopNGrams[n] {
				fmt.Printf("  %-24s x%d\n", strings.Join(g.Sequence, " "), g.Count)
			}
		}
	}

	return nil
}

func printTrends(report *analysis.TrendReport) {
	fmt.Println()
	fmt.Println("Solved Sessions")
	fmt.Println("---------------")
	fmt.Printf("Average:     %s, %.1f moves, %.2f TPS\n",
		formatDuration(time.Duration(report.AvgDurationMs)*time.Millisecond), report.AvgMoves, report.AvgTPS)
	fmt.Printf("Best:        %s (%d moves, %s)\n",
		formatDuration(time.Duration(report.Best.DurationMs)*time.Millisecond), report.Best.MoveCount, shortID(report.Best.SessionID))
	fmt.Printf("Worst:       %s (%d moves, %s)\n",
		formatDuration(time.Duration(report.Worst.DurationMs)*time.Millisecond), report.Worst.MoveCount, shortID(report.Worst.SessionID))
	for _, n := range []int{5, 10, 25, 50} {
		if avg, ok := report.RollingAvgs[n]; ok {
			fmt.Printf("Last %-2d avg: %s\n", n, formatDuration(time.Duration(avg)*time.Millisecond))
		}
	}
	if report.SolvedSessions >= 4 {
		fmt.Printf("Improvement: %+.1f%%\n", report.ImprovementPct)
		fmt.Printf("Consistency: %.0f/100\n", report.ConsistencyScore)
	}
}

// sessionPatterns mines turn sequences in the live moves of every session
// and merges them into one report.
func sessionPatterns(db *storage.DB, sessions []storage.Session, topK int) (*analysis.NGramReport, error) {
	moveRepo := storage.NewMoveRepository(db)
	reports := make(map[string]*analysis.NGramReport, len(sessions))
	for _, s := range sessions {
		rows, err := moveRepo.GetBySession(s.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load moves: %w", err)
		}
		live := make([]storage.MoveRow, 0, len(rows))
		for _, r := range rows {
			if !r.Undone() {
				live = append(live, r)
			}
		}
		if len(live) > 0 {
			reports[s.SessionID] = analysis.MineNGrams(live, 2, 4, topK)
		}
	}
	return analysis.MergeNGrams(reports, topK), nil
}
