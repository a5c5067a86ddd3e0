package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sadopc/pomotrack/internal/snapshot"
	"github.com/sadopc/pomotrack/internal/store"
	"github.com/sadopc/pomotrack/internal/timecalc"
)

const (
	formNewTask  = "task"
	formEditTask = "edit_task"
	formNewTag   = "tag"
	formEditTag  = "edit_tag"
)

type taskCreatedMsg struct {
	task store.Task
}

type tagCreatedMsg struct {
	tag store.Tag
}

type tasksModel struct {
	store  *store.Store
	state  *snapshot.State
	logger *log.Logger
	width  int
	height int

	cursor      int
	tagCursor   int
	viewingTags bool

	formActive bool
	form       *huh.Form
	formType   string

	// Form field pointers (survive value copies)
	formText  *string
	formTag   *string
	formColor *string

	editingID string
}

func newTasksModel(s *store.Store, logger *log.Logger) tasksModel {
	text, tag, color := "", "", tagColors[0]
	return tasksModel{
		store:     s,
		state:     &snapshot.State{},
		logger:    logger,
		formText:  &text,
		formTag:   &tag,
		formColor: &color,
	}
}

func (p *tasksModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

// clamp keeps the cursors inside the lists after the state changed.
func (p *tasksModel) clamp() {
	if p.cursor >= len(p.state.Tasks) {
		p.cursor = max(0, len(p.state.Tasks)-1)
	}
	if p.tagCursor >= len(p.state.Tags) {
		p.tagCursor = max(0, len(p.state.Tags)-1)
	}
}

func (p tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if p.viewingTags {
			return p.updateTagList(msg)
		}
		return p.updateTaskList(msg)
	}
	return p, nil
}

func (p tasksModel) updateTaskList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	tasks := p.state.Tasks
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(tasks)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Tags):
		p.viewingTags = true
		p.tagCursor = 0
	case key.Matches(msg, keys.New):
		return p.showTaskForm(formNewTask)
	case key.Matches(msg, keys.Edit):
		if len(tasks) > 0 {
			return p.showTaskForm(formEditTask)
		}
	case key.Matches(msg, keys.Complete):
		if len(tasks) > 0 {
			id := tasks[p.cursor].ID
			done, _ := p.state.ToggleCompleted(id)
			s := p.store
			return p, persist(p.logger, "update task", func() error {
				return s.SetTaskCompleted(id, done)
			})
		}
	case key.Matches(msg, keys.Delete):
		if len(tasks) > 0 {
			id := tasks[p.cursor].ID
			p.state.RemoveTask(id)
			p.clamp()
			s := p.store
			return p, persist(p.logger, "delete task", func() error {
				return s.DeleteTask(id)
			})
		}
	case key.Matches(msg, keys.Enter):
		if len(tasks) > 0 && !tasks[p.cursor].Completed {
			id := tasks[p.cursor].ID
			return p, func() tea.Msg { return selectTaskMsg{id: id} }
		}
	}
	return p, nil
}

func (p tasksModel) updateTagList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	tags := p.state.Tags
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Tags):
		p.viewingTags = false
	case key.Matches(msg, keys.Up):
		if p.tagCursor > 0 {
			p.tagCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.tagCursor < len(tags)-1 {
			p.tagCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showTagForm(formNewTag)
	case key.Matches(msg, keys.Edit):
		if len(tags) > 0 {
			return p.showTagForm(formEditTag)
		}
	case key.Matches(msg, keys.Delete):
		if len(tags) > 0 {
			id := tags[p.tagCursor].ID
			p.state.RemoveTag(id)
			p.clamp()
			s := p.store
			return p, persist(p.logger, "delete tag", func() error {
				return s.DeleteTag(id)
			})
		}
	}
	return p, nil
}

func (p tasksModel) tagOptions() []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("No tag", "")}
	for _, t := range p.state.Tags {
		opts = append(opts, huh.NewOption(t.Name, t.ID))
	}
	return opts
}

func (p tasksModel) showTaskForm(formType string) (tasksModel, tea.Cmd) {
	*p.formText = ""
	*p.formTag = ""
	p.formType = formType
	p.editingID = ""

	if formType == formEditTask {
		task := p.state.Tasks[p.cursor]
		*p.formText = task.Text
		if task.TagID != nil {
			*p.formTag = *task.TagID
		}
		p.editingID = task.ID
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(p.formText),
			huh.NewSelect[string]().Title("Tag").Options(p.tagOptions()...).Value(p.formTag),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p tasksModel) showTagForm(formType string) (tasksModel, tea.Cmd) {
	*p.formText = ""
	*p.formColor = tagColors[0]
	p.formType = formType
	p.editingID = ""

	if formType == formEditTag {
		tag := p.state.Tags[p.tagCursor]
		*p.formText = tag.Name
		*p.formColor = tag.Color
		p.editingID = tag.ID
	}

	colors := tagColors
	if !containsColor(colors, *p.formColor) {
		colors = append([]string{*p.formColor}, colors...)
	}
	colorOptions := make([]huh.Option[string], len(colors))
	for i, c := range colors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Tag name").Value(p.formText),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func containsColor(colors []string, c string) bool {
	for _, v := range colors {
		if v == c {
			return true
		}
	}
	return false
}

func (p tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		p.form = nil
		return p, p.submit()
	}
	return p, cmd
}

// submit applies a completed form. Empty text is a silent no-op.
func (p tasksModel) submit() tea.Cmd {
	text := strings.TrimSpace(*p.formText)
	if text == "" {
		return nil
	}
	var tagID *string
	if *p.formTag != "" {
		id := *p.formTag
		tagID = &id
	}
	color := *p.formColor
	id := p.editingID
	s := p.store

	switch p.formType {
	case formNewTask:
		logger := p.logger
		return func() tea.Msg {
			task, err := s.CreateTask(text, tagID)
			if err != nil {
				return createFailed(logger, "create task", err)
			}
			return taskCreatedMsg{task: *task}
		}

	case formEditTask:
		if i := p.taskIndex(id); i >= 0 {
			p.state.Tasks[i].Text = text
			p.state.Tasks[i].TagID = tagID
		}
		return persist(p.logger, "update task", func() error {
			if err := s.UpdateTaskText(id, text); err != nil {
				return err
			}
			return s.UpdateTaskTag(id, tagID)
		})

	case formNewTag:
		logger := p.logger
		return func() tea.Msg {
			tag, err := s.CreateTag(text, color)
			if err != nil {
				return createFailed(logger, "create tag", err)
			}
			return tagCreatedMsg{tag: *tag}
		}

	case formEditTag:
		if tag, ok := p.state.Tag(id); ok {
			tag.Name, tag.Color = text, color
			p.state.AddTag(tag)
		}
		return persist(p.logger, "update tag", func() error {
			return s.UpdateTag(id, text, color)
		})
	}
	return nil
}

func createFailed(logger *log.Logger, what string, err error) tea.Msg {
	if errors.Is(err, store.ErrEmptyText) || errors.Is(err, store.ErrEmptyName) {
		return nil
	}
	logger.Error("persist failed", "op", what, "err", err)
	return statusMsg{text: fmt.Sprintf("Could not %s: %v", what, err), isError: true}
}

func (p tasksModel) taskIndex(id string) int {
	for i, t := range p.state.Tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (p tasksModel) view() string {
	w := p.width - 4
	if p.formActive && p.form != nil {
		titles := map[string]string{
			formNewTask:  "New Task",
			formEditTask: "Edit Task",
			formNewTag:   "New Tag",
			formEditTag:  "Edit Tag",
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(titles[p.formType]), "", p.form.View())
		return panelStyle.Width(w).Render(content)
	}
	if p.viewingTags {
		return p.renderTagList(w)
	}
	return p.renderTaskList(w)
}

func (p tasksModel) renderTaskList(w int) string {
	title := titleStyle.Render("Tasks")
	if len(p.state.Tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	open := 0
	for _, t := range p.state.Tasks {
		if !t.Completed {
			open++
		}
	}
	rows := []string{
		title + mutedStyle.Render(fmt.Sprintf("  %d open · %d done", open, len(p.state.Tasks)-open)),
		"",
		mutedStyle.Render(fmt.Sprintf("  %-3s %-12s %10s  %s", "", "Tag", "Tracked", "Task")),
	}

	textWidth := max(w-36, 10)
	for i, task := range p.state.Tasks {
		cursor := "  "
		style := normalItemStyle
		if task.Completed {
			style = completedItemStyle
		}
		if i == p.cursor {
			cursor = "> "
			if !task.Completed {
				style = selectedItemStyle
			}
		}

		check := "[ ]"
		if task.Completed {
			check = successStyle.Render("[✓]")
		}
		tagName, color := "", "#666666"
		if task.TagID != nil {
			if tag, ok := p.state.Tag(*task.TagID); ok {
				tagName, color = tag.Name, tag.Color
			}
		}
		row := fmt.Sprintf("%s%s %s %-10s %10s  %s",
			cursor, check, dot(color), truncate(tagName, 10),
			timecalc.FormatDuration(task.TotalTime),
			style.Render(truncate(task.Text, textWidth)),
		)
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  c: complete  d: delete  enter: track  g: tags"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p tasksModel) renderTagList(w int) string {
	title := titleStyle.Render("Tags")
	if len(p.state.Tags) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tags. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	counts := make(map[string]int)
	for _, t := range p.state.Tasks {
		if t.TagID != nil {
			counts[*t.TagID]++
		}
	}

	rows := []string{title, ""}
	for i, tag := range p.state.Tags {
		cursor := "  "
		style := normalItemStyle
		if i == p.tagCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, fmt.Sprintf("%s%s %s %s",
			cursor, dot(tag.Color), style.Render(fmt.Sprintf("%-20s", tag.Name)),
			mutedStyle.Render(fmt.Sprintf("%d tasks", counts[tag.ID])),
		))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new tag  e: edit  d: delete  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
