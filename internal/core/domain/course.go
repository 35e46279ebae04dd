package domain

import (
	"encoding/json"
	"strings"
)

type Course struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Overview string   `json:"overview,omitempty" yaml:"overview"`
	Source   string   `json:"source,omitempty" yaml:"source"`
	Level    string   `json:"level,omitempty" yaml:"level"`
	Modules  []Module `json:"modules" yaml:"modules"`
}

// Module is read-only once loaded; the mentor pipeline never mutates it.
type Module struct {
	ID         string    `json:"id" yaml:"id"`
	Title      string    `json:"title" yaml:"title"`
	Summary    string    `json:"summary,omitempty" yaml:"summary"`
	TheoryText string    `json:"theory_text,omitempty" yaml:"theory_text"`
	FixedQnA   []QnaPair `json:"fixed_qna" yaml:"fixed_qna"`
}

type QnaPair struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// qnaWire accepts both the short (q/a) and long (question/answer) spellings
// found in authored content.
type qnaWire struct {
	Q        string `json:"q" yaml:"q"`
	A        string `json:"a" yaml:"a"`
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
}

func (w qnaWire) pair() QnaPair {
	pair := QnaPair{Question: w.Question, Answer: w.Answer}
	if strings.TrimSpace(pair.Question) == "" {
		pair.Question = w.Q
	}
	if strings.TrimSpace(pair.Answer) == "" {
		pair.Answer = w.A
	}
	return pair
}

func (p *QnaPair) UnmarshalJSON(data []byte) error {
	var w qnaWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = w.pair()
	return nil
}

func (p *QnaPair) UnmarshalYAML(unmarshal func(any) error) error {
	var w qnaWire
	if err := unmarshal(&w); err != nil {
		return err
	}
	*p = w.pair()
	return nil
}

// CourseSummary is the catalog view of a course without module content.
type CourseSummary struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Overview    string `json:"overview,omitempty"`
	Source      string `json:"source,omitempty"`
	Level       string `json:"level,omitempty"`
	ModuleCount int    `json:"module_count"`
}

func (c Course) Summary() CourseSummary {
	return CourseSummary{
		ID:          c.ID,
		Title:       c.Title,
		Overview:    c.Overview,
		Source:      c.Source,
		Level:       c.Level,
		ModuleCount: len(c.Modules),
	}
}
