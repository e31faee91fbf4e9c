package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/nxncube/internal/analysis"
	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/planfile"
	"github.com/SeamusWaldron/nxncube/internal/snapshot"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

var (
	exportSessionID string
	exportFormat    string
	exportOutput    string
	exportLast      bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export session data",
	Long:  `Export recorded session data in various formats.`,
}

var exportMovesCmd = &cobra.Command{
	Use:   "moves",
	Short: "Export moves from a session",
	Long: `Export the move sequence from a session in text or JSON format.
Undone moves are included in JSON output and skipped in text output.

Examples:
  nxncube export moves --last
  nxncube export moves --id <session_id> --format json
  nxncube export moves --id <session_id> --format txt -o moves.txt`,
	RunE: runExportMoves,
}

var exportPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Export a session's scramble plan as a plan file",
	RunE:  runExportPlan,
}

var exportSnapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export a session's latest snapshot as a snapshot file",
	Long: `Write the latest stored cubie snapshot of a session, together with its
scramble plan and live move history, to a snapshot file that
'nxncube play --from' can continue.`,
	RunE: runExportSnapshot,
}

var exportSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Export session statistics as JSON",
	RunE:  runExportSummary,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	for _, c := range []*cobra.Command{exportMovesCmd, exportPlanCmd, exportSnapshotCmd, exportSummaryCmd} {
		exportCmd.AddCommand(c)
		c.Flags().StringVar(&exportSessionID, "id", "", "Session ID to export")
		c.Flags().BoolVar(&exportLast, "last", false, "Export the last session")
		c.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file")
	}
	exportMovesCmd.Flags().StringVar(&exportFormat, "format", "txt", "Export format (txt, json)")
}

// exportSession opens the database and resolves the session to export.
func exportSession() (*storage.DB, *storage.Session, error) {
	if exportSessionID == "" && !exportLast {
		return nil, nil, fmt.Errorf("specify --id or --last")
	}

	db, err := openDB()
	if err != nil {
		return nil, nil, err
	}

	repo := storage.NewSessionRepository(db)
	var args []string
	if exportSessionID != "" {
		args = []string{exportSessionID}
	}
	id, err := resolveSessionID(repo, args, exportLast)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	s, err := repo.Get(id)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if s == nil {
		db.Close()
		return nil, nil, fmt.Errorf("session not found: %s", id)
	}
	return db, s, nil
}

func runExportMoves(cmd *cobra.Command, args []string) error {
	db, session, err := exportSession()
	if err != nil {
		return err
	}
	defer db.Close()

	moves, err := storage.NewMoveRepository(db).GetBySession(session.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get moves: %w", err)
	}

	if len(moves) == 0 {
		return fmt.Errorf("no moves found for session %s", session.SessionID)
	}

	// Format output
	var output string

	switch strings.ToLower(exportFormat) {
	case "txt":
		output = history.FormatMoveRecords(storage.ToRecords(moves))

	case "json":
		type MoveJSON struct {
			MoveIndex int    `json:"move_index"`
			TsMs      int64  `json:"ts_ms"`
			CubieID   int    `json:"cubie_id"`
			Axis      string `json:"axis"`
			Degrees   int    `json:"degrees"`
			Notation  string `json:"notation"`
			Undone    bool   `json:"undone,omitempty"`
		}

		movesJSON := make([]MoveJSON, 0, len(moves))
		for _, m := range moves {
			movesJSON = append(movesJSON, MoveJSON{
				MoveIndex: m.MoveIndex,
				TsMs:      m.TsMs,
				CubieID:   m.CubieID,
				Axis:      m.Axis,
				Degrees:   m.Degrees,
				Notation:  m.Notation,
				Undone:    m.Undone(),
			})
		}

		data, err := json.MarshalIndent(movesJSON, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		output = string(data)

	default:
		return fmt.Errorf("unknown format: %s (use txt or json)", exportFormat)
	}

	if err := writeOutput(output); err != nil {
		return err
	}
	if exportOutput != "" {
		fmt.Printf("Exported %d moves to %s\n", len(moves), exportOutput)
	}
	return nil
}

func runExportPlan(cmd *cobra.Command, args []string) error {
	db, session, err := exportSession()
	if err != nil {
		return err
	}
	defer db.Close()

	var plan history.Plan
	if session.PlanText != nil {
		plan, err = history.ParseMoveRecords(*session.PlanText)
		if err != nil {
			return fmt.Errorf("stored plan: %w", err)
		}
	}
	if len(plan) == 0 {
		return fmt.Errorf("session %s has no scramble plan", session.SessionID)
	}

	f := planfile.New(session.Dimension, plan)
	f.Notes = "exported from session " + session.SessionID

	if exportOutput == "" {
		b, err := planfile.Marshal(f)
		if err != nil {
			return err
		}
		fmt.Print(string(b))
		return nil
	}
	if err := planfile.Save(exportOutput, f); err != nil {
		return err
	}
	fmt.Printf("Exported %d plan moves to %s\n", len(plan), exportOutput)
	return nil
}

func runExportSnapshot(cmd *cobra.Command, args []string) error {
	db, session, err := exportSession()
	if err != nil {
		return err
	}
	defer db.Close()

	latest, err := storage.NewSnapshotRepository(db).GetLatest(session.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get snapshot: %w", err)
	}
	if latest == nil {
		return fmt.Errorf("session %s has no stored snapshot", session.SessionID)
	}

	rows, err := storage.NewMoveRepository(db).GetBySession(session.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get moves: %w", err)
	}
	if latest.MoveCount < len(rows) {
		rows = rows[:latest.MoveCount]
	}

	var plan history.Plan
	if session.PlanText != nil {
		if plan, err = history.ParseMoveRecords(*session.PlanText); err != nil {
			return fmt.Errorf("stored plan: %w", err)
		}
	}

	phase := "manipulating"
	if latest.Label == "solved" {
		phase = "solved"
	}

	doc := snapshot.Document{
		Version:   snapshot.Version,
		SessionID: session.SessionID,
		Dimension: session.Dimension,
		SavedAt:   session.StartedAt.Add(time.Duration(latest.TsMs) * time.Millisecond).UTC(),
		Phase:     phase,
		Cubies:    latest.Cubies,
		History:   storage.ToRecords(rows),
		Plan:      plan,
	}

	out := exportOutput
	if out == "" {
		out = session.SessionID + ".nxs"
	}
	if err := snapshot.Write(out, doc); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	fmt.Printf("Exported snapshot %q (%d moves) to %s\n", latest.Label, len(doc.History), out)
	return nil
}

func runExportSummary(cmd *cobra.Command, args []string) error {
	db, session, err := exportSession()
	if err != nil {
		return err
	}
	defer db.Close()

	moves, err := storage.NewMoveRepository(db).GetBySession(session.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get moves: %w", err)
	}
	marks, err := storage.NewPhaseRepository(db).GetPhaseMarks(session.SessionID)
	if err != nil {
		return fmt.Errorf("failed to get phases: %w", err)
	}

	summary := analysis.Summarize(*session, moves, marks, time.Now())
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeOutput(string(data))
}

// writeOutput prints output, or writes it to the --output file.
func writeOutput(output string) error {
	if exportOutput == "" {
		fmt.Println(output)
		return nil
	}

	// Ensure directory exists
	dir := filepath.Dir(exportOutput)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.WriteFile(exportOutput, []byte(output+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
