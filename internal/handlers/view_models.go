package handlers

import (
	"clozereader/internal/game"
	"clozereader/internal/models"
)

// blankView is what the client sees of a blank before answering. The
// original word never appears here.
type blankView struct {
	Index          int    `json:"index"`
	StructuralHint string `json:"structuralHint"`
}

type passageView struct {
	ClozeText         string      `json:"clozeText"`
	Blanks            []blankView `json:"blanks"`
	Contextualization string      `json:"contextualization"`
	Title             string      `json:"title"`
	Author            string      `json:"author"`
}

type roundView struct {
	SessionID            string        `json:"sessionId,omitempty"`
	RoundNumber          int           `json:"roundNumber"`
	Level                int           `json:"level"`
	BlanksPerPassage     int           `json:"blanksPerPassage"`
	PassesAtCurrentLevel int           `json:"passesAtCurrentLevel"`
	Passages             []passageView `json:"passages"`
}

type submitRequest struct {
	Passage int      `json:"passage"`
	Answers []string `json:"answers"`
}

type submitResponse struct {
	Score         models.PassageScore `json:"score"`
	RoundComplete bool                `json:"roundComplete"`
	Level         int                 `json:"level"`
	PassesAtLevel int                 `json:"passesAtCurrentLevel"`
}

type hintRequest struct {
	Passage      int    `json:"passage"`
	BlankIndex   int    `json:"blankIndex"`
	QuestionType string `json:"questionType"`
}

type hintResponse struct {
	Hint              string   `json:"hint"`
	UsedQuestionTypes []string `json:"usedQuestionTypes"`
}

type outcomeResponse struct {
	Outcome models.GameOutcome `json:"outcome"`
	Token   string             `json:"token"`
}

type leaderboardSubmitRequest struct {
	Initials string `json:"initials"`
	Token    string `json:"token"`
}

func newRoundView(sessionID string, round *game.Round, state models.RoundState) roundView {
	view := roundView{
		SessionID:            sessionID,
		RoundNumber:          round.Number,
		Level:                round.Level,
		BlanksPerPassage:     game.BlanksForLevel(round.Level),
		PassesAtCurrentLevel: state.PassesAtCurrentLevel,
	}
	for _, rp := range round.Passages {
		pv := passageView{
			ClozeText:         rp.ClozeText,
			Contextualization: rp.Contextualization,
			Title:             rp.Passage.Title,
			Author:            rp.Passage.Author,
		}
		for _, b := range rp.Blanks {
			pv.Blanks = append(pv.Blanks, blankView{Index: b.Index, StructuralHint: b.StructuralHint})
		}
		view.Passages = append(view.Passages, pv)
	}
	return view
}
