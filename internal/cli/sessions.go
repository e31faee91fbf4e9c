package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/nxncube/internal/analysis"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

var (
	listLimit   int
	showLast    bool
	showPauses  bool
	ngramMin    int
	ngramMax    int
	ngramTop    int
	endSolved   bool
	deleteForce bool
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect recorded sessions",
	Long:  `Commands for listing, inspecting and closing recorded play sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	Long:  `Display a list of recent sessions with basic statistics.`,
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Show details of a session",
	Long: `Display detailed information about a session including:
- Session metadata (dimension, duration, moves, TPS)
- Phase breakdown with timing
- Axis and turn usage
- Repeated move patterns
- Move sequence

Use --last to show the most recent session.`,
	RunE: runSessionsShow,
}

var sessionsEndCmd = &cobra.Command{
	Use:   "end [session-id]",
	Short: "Close an unfinished session",
	Long: `Close a session left open by 'nxncube play'. Without an ID the active
session from the state file is closed.`,
	RunE: runSessionsEnd,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-id>",
	Short: "Delete a session and everything recorded for it",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsListCmd.Flags().IntVarP(&listLimit, "limit", "n", 10, "Number of sessions to show")

	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsShowCmd.Flags().BoolVar(&showLast, "last", false, "Show the most recent session")
	sessionsShowCmd.Flags().BoolVar(&showPauses, "pauses", false, "List pauses over the threshold")
	sessionsShowCmd.Flags().IntVar(&ngramMin, "ngram-min", 2, "Shortest repeated pattern")
	sessionsShowCmd.Flags().IntVar(&ngramMax, "ngram-max", 4, "Longest repeated pattern")
	sessionsShowCmd.Flags().IntVar(&ngramTop, "ngram-top", 3, "Patterns to show per length")

	sessionsCmd.AddCommand(sessionsEndCmd)
	sessionsEndCmd.Flags().BoolVar(&endSolved, "solved", false, "Mark the session as solved")

	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete even if the session is still active")
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	// Open database
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessionRepo := storage.NewSessionRepository(db)
	sessions, err := sessionRepo.List(listLimit)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions recorded yet")
		fmt.Println("Start one with: nxncube play")
		return nil
	}

	fmt.Printf("Recent sessions (showing %d):\n", len(sessions))
	fmt.Println()
	fmt.Printf("%-36s  %-20s  %-5s  %-10s  %-6s  %-6s  %s\n", "ID", "Started", "N", "Duration", "Moves", "TPS", "Notes")
	fmt.Println("------------------------------------  --------------------  -----  ----------  ------  ------  -----")

	for _, s := range sessions {
		duration := "-"
		moves := "-"
		tps := "-"

		if s.DurationMs != nil {
			duration = formatDuration(time.Duration(*s.DurationMs) * time.Millisecond)
		}

		moveCount, _ := sessionRepo.GetMoveCount(s.SessionID)
		if moveCount > 0 {
			moves = fmt.Sprintf("%d", moveCount)
			if s.DurationMs != nil && *s.DurationMs > 0 {
				tps = fmt.Sprintf("%.2f", analysis.CalculateTPS(moveCount, *s.DurationMs))
			}
		}

		notes := ""
		if s.Notes != nil {
			notes = *s.Notes
			if len(notes) > 30 {
				notes = notes[:27] + "..."
			}
		}

		status := ""
		switch {
		case s.EndedAt == nil:
			status = " (active)"
		case s.Solved:
			status = " (solved)"
		}

		fmt.Printf("%-36s  %-20s  %-5s  %-10s  %-6s  %-6s  %s%s\n",
			s.SessionID,
			s.StartedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%dx%d", s.Dimension, s.Dimension),
			duration,
			moves,
			tps,
			notes,
			status,
		)
	}

	return nil
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	// Open database
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessionRepo := storage.NewSessionRepository(db)
	moveRepo := storage.NewMoveRepository(db)
	phaseRepo := storage.NewPhaseRepository(db)

	sessionID, err := resolveSessionID(sessionRepo, args, showLast)
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

	moves, err := moveRepo.GetBySession(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get moves: %w", err)
	}

	marks, err := phaseRepo.GetPhaseMarks(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get phases: %w", err)
	}

	summary := analysis.Summarize(*session, moves, marks, time.Now())

	// Display header
	fmt.Println("Session Details")
	fmt.Println("===============")
	fmt.Println()

	fmt.Printf("ID:        %s\n", session.SessionID)
	fmt.Printf("Lattice:   %dx%dx%d\n", session.Dimension, session.Dimension, session.Dimension)
	fmt.Printf("Started:   %s\n", session.StartedAt.Format("2006-01-02 15:04:05"))
	if session.EndedAt != nil {
		fmt.Printf("Ended:     %s\n", session.EndedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Println("Ended:     (active)")
	}
	fmt.Printf("Solved:    %v\n", session.Solved)
	if session.Notes != nil && *session.Notes != "" {
		fmt.Printf("Notes:     %s\n", *session.Notes)
	}
	if session.PlanText != nil && *session.PlanText != "" {
		fmt.Printf("Scramble:  %s\n", *session.PlanText)
	}
	fmt.Println()

	// Stats
	fmt.Println("Statistics")
	fmt.Println("----------")
	fmt.Printf("Duration:       %s\n", formatDuration(time.Duration(summary.DurationMs)*time.Millisecond))
	fmt.Printf("Moves:          %d (%d undone, %d net)\n", summary.TotalMoves, summary.UndoneMoves, summary.NetMoves)
	fmt.Printf("TPS:            %.2f\n", summary.TPSOverall)
	fmt.Printf("Avg move:       %.0fms\n", summary.AvgMoveDurationMs)
	fmt.Printf("Longest pause:  %s\n", formatDuration(time.Duration(summary.LongestPauseMs)*time.Millisecond))
	fmt.Printf("Pauses > %.1fs: %d\n", float64(analysis.DefaultPauseThresholdMs)/1000, summary.PauseCountOver1500)
	fmt.Printf("Cancellations:  %d\n", summary.Cancellations)
	fmt.Println()

	if len(summary.PhaseStats) > 0 {
		fmt.Println("Phases")
		fmt.Println("------")
		for _, ps := range summary.PhaseStats {
			fmt.Printf("%-14s %4d moves  %10s  %.2f TPS\n",
				ps.PhaseKey,
				ps.MoveCount,
				formatDuration(time.Duration(ps.DurationMs)*time.Millisecond),
				ps.TPS,
			)
		}
		fmt.Println()
	}

	if p := summary.Profile; p != nil && summary.NetMoves > 0 {
		fmt.Println("Movement")
		fmt.Println("--------")
		fmt.Printf("Axes:  X=%d  Y=%d  Z=%d  (most used %s)\n",
			p.AxisCounts["X"], p.AxisCounts["Y"], p.AxisCounts["Z"], p.MostUsedAxis)
		fmt.Printf("Turns: most used %+d°\n", p.MostUsedTurn)
		fmt.Println()
	}

	if rep := analysis.AnalyzeRepetitions(moves); rep.TotalWastedMoves > 0 || len(rep.BackAndForthPatterns) > 0 {
		fmt.Println("Wasted Motion")
		fmt.Println("-------------")
		fmt.Printf("Wasted moves:  %d (optimal length %d, efficiency %.0f%%)\n",
			rep.TotalWastedMoves, rep.OptimizedLength, rep.Efficiency*100)
		for _, c := range rep.ImmediateCancellations {
			fmt.Printf("  cancel  %s, %s\n", c.Move1, c.Move2)
		}
		for _, mo := range rep.MergeOpportunities {
			fmt.Printf("  merge   %s, %s -> %s\n", mo.Move1, mo.Move2, mo.MergedMove)
		}
		for _, p := range rep.BackAndForthPatterns {
			fmt.Printf("  repeat  %s x%d\n", strings.Join(p.Pattern, ", "), p.Count)
		}
		fmt.Println()
	}

	if showPauses {
		pauses := analysis.AnalyzePauses(moves, analysis.DefaultPauseThresholdMs)
		if len(pauses) > 0 {
			fmt.Println("Pauses")
			fmt.Println("------")
			for _, p := range pauses {
				fmt.Printf("  after move %-4d %s\n", p.AfterMoveIndex, formatDuration(time.Duration(p.DurationMs)*time.Millisecond))
			}
			fmt.Println()
		}
	}

	report := analysis.MineNGrams(moves, ngramMin, ngramMax, ngramTop)
	if len(report.TopNGrams) > 0 {
		fmt.Println("Repeated Patterns")
		fmt.Println("-----------------")
		for n := ngramMin; n <= ngramMax; n++ {
			for _, g := range report.TopNGrams[n] {
				fmt.Printf("  %-40s x%d\n", strings.Join(g.Sequence, " "), g.Count)
			}
		}
		fmt.Println()
	}

	if len(moves) > 0 {
		fmt.Println("Moves")
		fmt.Println("-----")

		var line string
		for i, m := range moves {
			n := m.Notation
			if m.Undone() {
				n = "(" + n + ")"
			}
			if len(line)+len(n)+2 > 72 {
				fmt.Println(line)
				line = n
			} else if line == "" {
				line = n
			} else {
				line += ", " + n
			}

			if i == len(moves)-1 && line != "" {
				fmt.Println(line)
			}
		}
	}

	return nil
}

func runSessionsEnd(cmd *cobra.Command, args []string) error {
	stateFile, err := openStateFile()
	if err != nil {
		return err
	}

	sessionID := stateFile.ActiveSessionID()
	if len(args) > 0 {
		sessionID = args[0]
	}
	if sessionID == "" {
		return fmt.Errorf("no active session")
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	sessionRepo := storage.NewSessionRepository(db)
	session, err := sessionRepo.Get(sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	if session.EndedAt != nil {
		return fmt.Errorf("session already ended: %s", sessionID)
	}

	solved := endSolved
	if !solved {
		latest, err := storage.NewSnapshotRepository(db).GetLatest(sessionID)
		if err == nil && latest != nil && latest.Label == "solved" {
			solved = true
		}
	}

	if err := sessionRepo.End(sessionID, solved); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if stateFile.ActiveSessionID() == sessionID {
		if err := stateFile.ClearActiveSession(); err != nil {
			return err
		}
	}

	fmt.Printf("Session ended: %s\n", sessionID)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	stateFile, err := openStateFile()
	if err != nil {
		return err
	}
	if stateFile.ActiveSessionID() == args[0] && !deleteForce {
		return fmt.Errorf("session %s is active; end it first or use --force", shortID(args[0]))
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := storage.NewSessionRepository(db).Delete(args[0]); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if stateFile.ActiveSessionID() == args[0] {
		if err := stateFile.ClearActiveSession(); err != nil {
			return err
		}
	}

	fmt.Printf("Deleted session %s\n", args[0])
	return nil
}
