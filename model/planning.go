package model

import "strings"

// BoardStatus is the kanban column of an initiative.
type BoardStatus string

const (
	BoardToDo  BoardStatus = "A_FAZER"
	BoardDoing BoardStatus = "FAZENDO"
	BoardDone  BoardStatus = "FEITO"
)

func (s BoardStatus) Valid() bool {
	return s == BoardToDo || s == BoardDoing || s == BoardDone
}

// Location places an initiative or an execution row relative to sprints.
type Location string

const (
	Backlog       Location = "BACKLOG"
	Queued        Location = "EM_FILA"
	CurrentSprint Location = "SPRINT_ATUAL"
	OutOfSprint   Location = "FORA_SPRINT"
	Concluded     Location = "CONCLUIDA"
)

func (l Location) Valid() bool {
	switch l {
	case Backlog, Queued, CurrentSprint, OutOfSprint, Concluded:
		return true
	}
	return false
}

type Priority string

const (
	Prioritized    Priority = "SIM"
	NotPrioritized Priority = "NAO"
)

func (p Priority) Valid() bool {
	return p == Prioritized || p == NotPrioritized
}

// Initiative is a kanban card moving a key result forward.
type Initiative struct {
	ID          string      `json:"id"`
	KeyResultID string      `json:"keyResultId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	BoardStatus BoardStatus `json:"boardStatus"`
	Location    Location    `json:"location"`
	SprintID    string      `json:"sprintId,omitempty"`
	Directorate Directorate `json:"directorate"`
}

type Program struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Directorate Directorate `json:"directorate"`
}

type ProgramInitiative struct {
	ID          string      `json:"id"`
	ProgramID   string      `json:"programId"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	BoardStatus BoardStatus `json:"boardStatus"`
	Priority    Priority    `json:"priority"`
	Directorate Directorate `json:"directorate"`
}

// ExecutionControl is a row of the sprint execution table.
type ExecutionControl struct {
	ID                  string      `json:"id"`
	PlanProgram         string      `json:"planProgram"`
	KRProjectInitiative string      `json:"krProjectInitiative"`
	BacklogTasks        string      `json:"backlogTasks"`
	SprintStatus        Location    `json:"sprintStatus"`
	SprintTasks         string      `json:"sprintTasks"`
	Progress            BoardStatus `json:"progress"`
	Directorate         Directorate `json:"directorate"`
}

type SprintStats struct {
	Backlog     int `json:"backlog"`
	EmFila      int `json:"emFila"`
	Concluido   int `json:"concluido"`
	SprintAtual int `json:"sprintAtual"`
	Progresso   int `json:"progresso"`
}

// SprintStatsOf sums up execution rows. Progress is the rounded share of
// finished rows over rows with backlog tasks.
func SprintStatsOf(rows []ExecutionControl) SprintStats {
	s := SprintStats{}
	for _, r := range rows {
		if strings.TrimSpace(r.BacklogTasks) != "" {
			s.Backlog++
		}
		switch r.SprintStatus {
		case OutOfSprint:
			s.EmFila++
		case CurrentSprint:
			s.SprintAtual++
		}
		if r.Progress == BoardDone {
			s.Concluido++
		}
	}
	if s.Backlog > 0 {
		s.Progresso = (s.Concluido*200 + s.Backlog) / (2 * s.Backlog)
	}
	return s
}

// BoardStats counts kanban cards per column.
type BoardStats struct {
	Total       int `json:"total"`
	AFazer      int `json:"aFazer"`
	Fazendo     int `json:"fazendo"`
	Feito       int `json:"feito"`
	Priorizadas int `json:"priorizadas"`
}

func BoardStatsOf(items []ProgramInitiative) BoardStats {
	s := BoardStats{Total: len(items)}
	for _, i := range items {
		switch i.BoardStatus {
		case BoardToDo:
			s.AFazer++
		case BoardDoing:
			s.Fazendo++
		case BoardDone:
			s.Feito++
		}
		if i.Priority == Prioritized {
			s.Priorizadas++
		}
	}
	return s
}
