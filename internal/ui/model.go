package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/pricesheet/internal/config"
	"github.com/nconklindev/pricesheet/internal/converter"
	"github.com/nconklindev/pricesheet/internal/job"
	"github.com/nconklindev/pricesheet/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	statePathInput
	stateOptions
	stateProcessing
	stateComplete
	stateError
)

// option rows on the options screen, in display order
const (
	optFormat = iota
	optDedupe
	optPartial
	optLanguage
	optCount
)

type Model struct {
	state        state
	cfg          config.Config
	filepicker   filepicker.Model
	pathInput    textinput.Model
	selectedFile string
	fileData     *types.FileData
	cursor       int
	result       *types.ConversionResult
	logFile      string
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan conversionResultMsg
}

type conversionResultMsg struct {
	result  *types.ConversionResult
	logFile string
	err     error
}

type fileLoadedMsg struct {
	data *types.FileData
	err  error
}

type conversionCompleteMsg struct {
	result  *types.ConversionResult
	logFile string
	err     error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(cfg config.Config) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".csv"}
	fp.CurrentDirectory, _ = os.Getwd()
	if abs, err := filepath.Abs(fp.CurrentDirectory); err == nil {
		fp.CurrentDirectory = abs
	}

	// Set filepicker colors to match theme
	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	ti := textinput.New()
	ti.Placeholder = `/home/me/exports/products-price.csv`
	ti.Prompt = "> "
	ti.CharLimit = 4096
	ti.Width = 60

	prog := progress.New(progress.WithGradient("#2BB673", "#8CE0B1"))

	return Model{
		state:      stateFilePicker,
		cfg:        cfg,
		filepicker: fp,
		pathInput:  ti,
		progress:   prog,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for title, subtitle and help text
		height := msg.Height - 14
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		if w := msg.Width - 10; w > 20 {
			m.pathInput.Width = w
			m.progress.Width = w
		}
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "p":
				m.state = statePathInput
				m.pathInput.SetValue("")
				return m, tea.Batch(m.pathInput.Focus(), textinput.Blink)
			}

		case statePathInput:
			switch msg.String() {
			case "ctrl+c":
				return m, tea.Quit
			case "esc":
				m.pathInput.Blur()
				m.state = stateFilePicker
				return m, nil
			case "enter":
				path := converter.NormalizeUserPath(m.pathInput.Value())
				if path == "" {
					return m, nil
				}
				m.pathInput.Blur()
				m.selectedFile = path
				return m, m.loadFile(path)
			}
			var cmd tea.Cmd
			m.pathInput, cmd = m.pathInput.Update(msg)
			return m, cmd

		case stateOptions:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc":
				m.state = stateFilePicker
				return m, nil
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < optCount-1 {
					m.cursor++
				}
			case " ", "left", "right", "h", "l":
				m.toggle(m.cursor)
			case "enter":
				m.state = stateProcessing
				return m.convertFile()
			}
			return m, nil

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
		}

	case fileLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.fileData = msg.data
		m.cursor = 0
		m.state = stateOptions
		return m, nil

	case conversionCompleteMsg:
		m.logFile = msg.logFile
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	switch m.state {
	case stateFilePicker:
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			return m, m.loadFile(path)
		}
		return m, cmd

	case statePathInput:
		var cmd tea.Cmd
		m.pathInput, cmd = m.pathInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// toggle flips the option under the cursor
func (m *Model) toggle(opt int) {
	switch opt {
	case optFormat:
		if m.cfg.Format == types.FormatXLSX {
			m.cfg.Format = types.FormatDOCX
		} else {
			m.cfg.Format = types.FormatXLSX
		}
	case optDedupe:
		m.cfg.Dedupe = !m.cfg.Dedupe
	case optPartial:
		if m.cfg.PartialPolicy == types.PartialAsInvalid {
			m.cfg.PartialPolicy = types.PartialAsBlank
		} else {
			m.cfg.PartialPolicy = types.PartialAsInvalid
		}
	case optLanguage:
		if m.cfg.Language == types.LanguageFa {
			m.cfg.Language = types.LanguageEn
		} else {
			m.cfg.Language = types.LanguageFa
		}
	}
}

func (m Model) loadFile(path string) tea.Cmd {
	return func() tea.Msg {
		if err := converter.ValidateInputPath(path); err != nil {
			return fileLoadedMsg{err: err}
		}
		data, err := converter.Preview(path)
		return fileLoadedMsg{data: data, err: err}
	}
}

func (m Model) convertFile() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan conversionResultMsg, 1)

	cmd := tea.Batch(
		func() tea.Msg {
			// Capture for the goroutine
			progressChan := m.progressChan
			resultChan := m.resultChan
			cfg := m.cfg
			selectedFile := m.selectedFile

			go func() {
				result, logFile, err := job.Run(cfg, job.Request{InputFile: selectedFile, Progress: progressChan})

				resultChan <- conversionResultMsg{result: result, logFile: logFile, err: err}

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

func waitForProgress(progressChan chan float64, resultChan chan conversionResultMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return conversionCompleteMsg(res)
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case statePathInput:
		return m.viewPathInput()
	case stateOptions:
		return m.viewOptions()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Pricesheet - CSV Price List Converter"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a CSV file of product names and prices"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("p: type a path • q: quit"))

	return s.String()
}

func (m Model) viewPathInput() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Enter CSV Path"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Full absolute path of the CSV file; quotes are fine"))
	s.WriteString("\n\n")
	s.WriteString(m.pathInput.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter: open • esc: back to file picker • ctrl+c: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewOptions() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Conversion Options"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("File: %s", filepath.Base(m.selectedFile))))
	s.WriteString("\n")

	if m.fileData != nil {
		s.WriteString(renderPreview(m.fileData, m.width-8))
		s.WriteString("\n\n")
	}

	partial := "invalid"
	if m.cfg.PartialPolicy == types.PartialAsBlank {
		partial = "blank"
	}
	lines := []string{
		fmt.Sprintf("Output format:          %s", strings.ToUpper(string(m.cfg.Format))),
		fmt.Sprintf("Remove duplicates:      %s", checkbox(m.cfg.Dedupe)),
		fmt.Sprintf("Empty name with price:  count as %s", partial),
		fmt.Sprintf("Header language:        %s", m.cfg.Language),
	}
	for i, line := range lines {
		cursor := " "
		if m.cursor == i {
			cursor = ">"
			s.WriteString(SelectedStyle.Render(cursor + " " + line))
		} else {
			s.WriteString(UnselectedStyle.Render(cursor + " " + line))
		}
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Output: " + converter.OutputPath(m.selectedFile, m.cfg.Format)))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("↑/↓: navigate • space: change • enter: convert • esc: back • q: quit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("▦ Processing..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("Converting to %s...", strings.ToUpper(string(m.cfg.Format))))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	s.WriteString("\n\n")

	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	s.WriteString(fmt.Sprintf("Input:  %s\n", shortenPath(m.result.InputFile, maxPathLen)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s", shortenPath(m.result.OutputFile, maxPathLen))))
	s.WriteString("\n")
	s.WriteString(fmt.Sprintf("Log:    %s\n", shortenPath(m.logFile, maxPathLen)))
	s.WriteString("\n")
	s.WriteString(renderStats(m.result.Stats))
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter or q: exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	if m.logFile != "" {
		s.WriteString("\n\n")
		s.WriteString(SubtitleStyle.Render("Check log file for details: " + m.logFile))
	}
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("enter or q: exit"))

	return BoxStyle.Render(s.String())
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

// shortenPath keeps the tail of p when it is longer than max runes
func shortenPath(p string, max int) string {
	r := []rune(p)
	if len(r) > max {
		return "..." + string(r[len(r)-max+3:])
	}
	return p
}
