package model

import "time"

type OKRStatus string

const (
	NotStarted OKRStatus = "NAO_INICIADO"
	InProgress OKRStatus = "EM_ANDAMENTO"
	Done       OKRStatus = "CONCLUIDO"
)

func (s OKRStatus) Valid() bool {
	return s == NotStarted || s == InProgress || s == Done
}

type OKRSituation string

const (
	OnTime   OKRSituation = "NO_PRAZO"
	Late     OKRSituation = "EM_ATRASO"
	Finished OKRSituation = "FINALIZADO"
)

const DateLayout = "2006-01-02"

type Objective struct {
	ID          string      `json:"id"`
	Code        string      `json:"code"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Directorate Directorate `json:"directorate"`
}

type KeyResult struct {
	ID          string       `json:"id"`
	ObjectiveID string       `json:"objectiveId"`
	Code        string       `json:"code"`
	Description string       `json:"description"`
	Status      OKRStatus    `json:"status"`
	Situation   OKRSituation `json:"situation"`
	// Deadline is a calendar date, YYYY-MM-DD.
	Deadline    string      `json:"deadline"`
	Directorate Directorate `json:"directorate"`
}

// SituationAt derives the key result situation on the day of now. A key
// result is late only once its deadline day has passed.
func (kr KeyResult) SituationAt(now time.Time) OKRSituation {
	if kr.Status == Done {
		return Finished
	}
	deadline, err := time.ParseInLocation(DateLayout, kr.Deadline, now.Location())
	if err != nil {
		return OnTime
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if deadline.Before(today) {
		return Late
	}
	return OnTime
}

type OKRStats struct {
	Total       int `json:"total"`
	Concluido   int `json:"concluido"`
	EmAndamento int `json:"emAndamento"`
	AIniciar    int `json:"aIniciar"`
	Progresso   int `json:"progresso"`
}

func Stats(krs []KeyResult) OKRStats {
	s := OKRStats{Total: len(krs)}
	for _, kr := range krs {
		switch kr.Status {
		case Done:
			s.Concluido++
		case InProgress:
			s.EmAndamento++
		default:
			s.AIniciar++
		}
	}
	if s.Total > 0 {
		s.Progresso = (s.Concluido*200 + s.Total) / (2 * s.Total)
	}
	return s
}
