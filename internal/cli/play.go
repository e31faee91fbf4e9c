package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/nxncube"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
	"github.com/SeamusWaldron/nxncube/internal/recorder"
	"github.com/SeamusWaldron/nxncube/internal/snapshot"
	"github.com/SeamusWaldron/nxncube/internal/storage"
)

var (
	playDimension int
	playSeed      uint64
	playFrom      string
	playResume    bool
	playNotes     string
	playNoRecord  bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a session in the terminal",
	Long: `Start an interactive TUI that scrambles a fresh lattice and lets you turn
slices from the keyboard. Moves are recorded to the database as you play.

Keyboard shortcuts:
  tab/→   - Select next cubie
  S-tab/← - Select previous cubie
  x y z   - Turn the selected cubie's slice +90 about X, Y or Z
  X Y Z   - Turn it -90
  u       - Undo the last move
  r       - Retry the same scramble
  s       - Save a snapshot
  q/Esc   - Quit (an unsolved session can be continued with --resume)`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().IntVar(&playDimension, "dimension", 0, "Lattice size N (default from config)")
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "Scramble seed (0 = time-seeded)")
	playCmd.Flags().StringVar(&playFrom, "from", "", "Continue from a snapshot file")
	playCmd.Flags().BoolVar(&playResume, "resume", false, "Continue from the last saved snapshot")
	playCmd.Flags().StringVar(&playNotes, "notes", "", "Notes for this session")
	playCmd.Flags().BoolVar(&playNoRecord, "no-record", false, "Do not record to the database")
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	phaseStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	moveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("82"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Reverse(true).
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	layerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
)

const frameInterval = 33 * time.Millisecond

// Messages
type tickMsg time.Time

// Model
type playModel struct {
	sess *nxncube.Session
	rec  *recorder.Session // nil when not recording

	stateFile *recorder.StateFile

	// Selection
	selected int
	count    int

	// Display state
	lastMoves []string
	message   string
	grid      string // cached layer view, redrawn when idle

	// UI
	width    int
	height   int
	err      error
	quitting bool
	saved    string
}

func newPlayModel(sess *nxncube.Session, rec *recorder.Session, sf *recorder.StateFile) *playModel {
	m := &playModel{
		sess:      sess,
		rec:       rec,
		stateFile: sf,
		count:     lattice.ShellCount(sess.Dimension()),
	}

	sess.OnMove(func(mv nxncube.Move) {
		m.pushMove(mv.Notation())
	})
	sess.OnUndo(func(mv nxncube.Move) {
		m.pushMove("undo " + mv.Notation())
	})
	sess.OnSolved(func() {
		m.message = "Solved!"
	})
	sess.OnPhaseChange(func(p nxncube.Phase) {
		if p == nxncube.PhaseManipulating && m.message == "" {
			m.message = "Scrambled - your move"
		}
	})
	return m
}

func (m *playModel) pushMove(s string) {
	m.lastMoves = append(m.lastMoves, s)
	if len(m.lastMoves) > 8 {
		m.lastMoves = m.lastMoves[len(m.lastMoves)-8:]
	}
}

func (m *playModel) Init() tea.Cmd {
	return m.tickCmd()
}

func (m *playModel) tickCmd() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil

		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab", "right", "l":
			m.selected = (m.selected + 1) % m.count
			m.grid = ""

		case "shift+tab", "left", "h":
			m.selected = (m.selected + m.count - 1) % m.count
			m.grid = ""

		case "x", "y", "z", "X", "Y", "Z":
			m.turn(msg.String())

		case "u":
			if !m.sess.Undo() {
				m.err = errors.New("nothing to undo")
			}

		case "r":
			m.message = ""
			m.lastMoves = nil
			if err := m.sess.Retry(); err != nil {
				m.err = err
			}

		case "s":
			m.err = m.saveSnapshot("manual")
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tickMsg:
		m.sess.Tick(frameInterval, nxncube.Input{})
		if !m.sess.Busy() && m.grid == "" {
			m.grid = m.renderLayers()
		} else if m.sess.Busy() {
			m.grid = ""
		}
		if m.rec != nil && m.err == nil {
			m.err = m.rec.Err()
		}
		return m, m.tickCmd()
	}

	return m, nil
}

func (m *playModel) turn(key string) {
	deg := 90
	if strings.ToUpper(key) == key {
		deg = -90
	}

	var r nxncube.Rotation
	switch strings.ToLower(key) {
	case "x":
		r.X = deg
	case "y":
		r.Y = deg
	case "z":
		r.Z = deg
	}

	if err := m.sess.Rotate(nxncube.Turn(m.selected, r)); err != nil {
		m.err = err
		return
	}
	if m.message == "Solved!" {
		m.message = ""
	}
}

func (m *playModel) saveSnapshot(label string) error {
	path := snapshotPath(m.stateFile, m.sess.ID())
	if err := snapshot.Write(path, m.sess.Snapshot()); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := m.stateFile.SetLastSnapshot(path); err != nil {
		return err
	}
	if m.rec != nil {
		if _, err := m.rec.Snapshot(label); err != nil {
			return err
		}
	}
	m.saved = path
	return nil
}

// renderLayers draws each z layer of the lattice as a grid of cubie ids,
// highlighting the selected cubie.
func (m *playModel) renderLayers() string {
	n := m.sess.Dimension()
	at := make(map[lattice.Vec3i]int, m.count)
	for _, c := range m.sess.Cubies() {
		at[c.Grid] = c.ID
	}

	width := len(fmt.Sprint(m.count - 1))
	layers := make([]string, 0, n)
	for z := 0; z < n; z++ {
		var b strings.Builder
		b.WriteString(statusStyle.Render(fmt.Sprintf("z=%d", z)))
		for y := n - 1; y >= 0; y-- {
			b.WriteString("\n")
			for x := 0; x < n; x++ {
				if x > 0 {
					b.WriteString(" ")
				}
				id, ok := at[lattice.Vec3i{X: x, Y: y, Z: z}]
				switch {
				case !ok:
					b.WriteString(fmt.Sprintf("%*s", width, "."))
				case id == m.selected:
					b.WriteString(selectedStyle.Render(fmt.Sprintf("%*d", width, id)))
				default:
					b.WriteString(fmt.Sprintf("%*d", width, id))
				}
			}
		}
		layers = append(layers, layerStyle.Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, layers...)
}

func (m *playModel) View() string {
	if m.quitting {
		msg := "Goodbye!\n"
		if m.saved != "" {
			msg += fmt.Sprintf("Snapshot saved to: %s\n", m.saved)
		}
		return msg
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("nxncube %dx%dx%d", m.sess.Dimension(), m.sess.Dimension(), m.sess.Dimension())))
	b.WriteString("\n\n")

	status := fmt.Sprintf("Session: %s", shortID(m.sess.ID()))
	if m.rec != nil {
		status += fmt.Sprintf("  (recording, %s)", formatDuration(time.Duration(m.rec.ElapsedMs())*time.Millisecond))
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("Phase: %s  State: %s\n",
		phaseStyle.Render(m.sess.Phase().DisplayName()),
		statusStyle.Render(m.sess.Engine().State().String())))
	b.WriteString(fmt.Sprintf("Moves: %d  Selected: #%d\n", len(m.sess.Moves()), m.selected))
	b.WriteString("\n")

	if m.grid != "" {
		b.WriteString(m.grid)
		b.WriteString("\n")
	} else {
		b.WriteString(statusStyle.Render("turning..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.lastMoves) > 0 {
		b.WriteString("Recent: ")
		b.WriteString(moveStyle.Render(strings.Join(m.lastMoves, "  ")))
		b.WriteString("\n")
	}

	if m.message != "" {
		b.WriteString(phaseStyle.Render(m.message))
		b.WriteString("\n")
	}
	if m.saved != "" {
		b.WriteString(statusStyle.Render("Saved " + m.saved))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab/←→ select • x y z turn • X Y Z reverse • u undo • r retry • s save • q quit"))
	b.WriteString("\n")

	return b.String()
}

func runPlay(cmd *cobra.Command, args []string) error {
	if playDimension > 0 {
		settings.Dimension = playDimension
	}
	if playSeed != 0 {
		settings.Seed = playSeed
	}

	stateFile, err := openStateFile()
	if err != nil {
		return err
	}

	from := playFrom
	if playResume {
		from = stateFile.LastSnapshotPath()
		if from == "" {
			return fmt.Errorf("no snapshot to resume from")
		}
	}

	log := fileLogger()
	opts := sessionOptions(log)

	var sess *nxncube.Session
	if from != "" {
		doc, err := snapshot.Read(from)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		sess, err = nxncube.RestoreSession(doc, opts...)
		if err != nil {
			return fmt.Errorf("failed to restore session: %w", err)
		}
		fmt.Printf("Continuing session %s from %s\n", sess.ID(), from)
	} else {
		sess, err = nxncube.NewSession(opts...)
		if err != nil {
			return err
		}
	}
	defer sess.Close()

	var rec *recorder.Session
	if !playNoRecord {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := stateFile.SetDBPath(db.Path()); err != nil {
			return err
		}

		rec = recorder.NewSession(db, stateFile, log)
		if err := attachRecorder(rec, storage.NewSessionRepository(db), sess, from != ""); err != nil {
			return err
		}
	}

	if from == "" {
		if err := sess.Start(); err != nil {
			return err
		}
	}

	model := newPlayModel(sess, rec, stateFile)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	// Let an in-flight turn land before saving.
	sess.RunUntilIdle(frameInterval, 1000)

	if sess.IsSolved() && sess.Phase() == nxncube.PhaseSolved {
		if rec != nil {
			if err := rec.End(); err != nil {
				return fmt.Errorf("failed to end session: %w", err)
			}
		}
		fmt.Printf("Solved in %d moves\n", len(sess.Moves()))
		return nil
	}

	if err := model.saveSnapshot("quit"); err != nil {
		return err
	}
	fmt.Printf("Session saved to %s\n", model.saved)
	fmt.Println("Continue with: nxncube play --resume")
	return nil
}

// attachRecorder starts recording sess, or resumes its row when a restored
// session is still open in the database.
func attachRecorder(rec *recorder.Session, repo *storage.SessionRepository, sess *nxncube.Session, restored bool) error {
	notes := playNotes
	if restored {
		row, err := repo.Get(sess.ID())
		if err != nil {
			return fmt.Errorf("failed to get session: %w", err)
		}
		switch {
		case row != nil && row.EndedAt == nil:
			return rec.Resume(sess.Engine(), sess.ID())
		case row != nil:
			// The stored row is closed; record the continuation as a new session.
			if notes == "" {
				notes = "continued from " + shortID(sess.ID())
			}
			_, err := rec.Start(sess.Engine(), "", notes, version)
			return err
		}
	}

	if _, err := rec.Start(sess.Engine(), sess.ID(), notes, version); err != nil {
		return fmt.Errorf("failed to start recording: %w", err)
	}
	if restored {
		return rec.MarkPhase(recorder.PhaseManipulating, "restored")
	}
	return nil
}
