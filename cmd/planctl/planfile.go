package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/noah-isme/ismart-schedule-api/internal/dto"
)

// planFile is the YAML form of a generation request.
//
//	start: 2024-01-01
//	end: 2024-01-07
//	workdays: [mon, tue, wed, thu, fri]
//	work: {start: "09:00", hours: 8, name: Office}
//	sleepHours: 8
//	tasks:
//	  - {name: Gym, hours: 1, days: [mon, wed], prefer: evening}
//	events:
//	  - {name: Dentist, date: 2024-01-03, start: "14:30", hours: 1}
type planFile struct {
	Start      string      `yaml:"start"`
	End        string      `yaml:"end"`
	Workdays   []string    `yaml:"workdays"`
	Work       *workBlock  `yaml:"work"`
	SleepHours *float64    `yaml:"sleepHours"`
	Tasks      []taskEntry `yaml:"tasks"`
	Events     []eventItem `yaml:"events"`
}

type workBlock struct {
	Start string   `yaml:"start"`
	Hours *float64 `yaml:"hours"`
	Name  string   `yaml:"name"`
}

type taskEntry struct {
	Name   string   `yaml:"name"`
	Hours  float64  `yaml:"hours"`
	Days   []string `yaml:"days"`
	Prefer string   `yaml:"prefer"`
}

type eventItem struct {
	Name  string  `yaml:"name"`
	Date  string  `yaml:"date"`
	Start string  `yaml:"start"`
	Hours float64 `yaml:"hours"`
}

func loadPlanFile(path string) (*planFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	var pf planFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parse plan file %s: %w", path, err)
	}
	return &pf, nil
}

func (pf *planFile) request() dto.GeneratePlanRequest {
	req := dto.GeneratePlanRequest{
		StartDate:  pf.Start,
		EndDate:    pf.End,
		Workdays:   pf.Workdays,
		SleepHours: pf.SleepHours,
	}
	if pf.Work != nil {
		req.WorkStart = pf.Work.Start
		req.WorkHours = pf.Work.Hours
		req.WorkName = pf.Work.Name
	}
	for _, t := range pf.Tasks {
		req.Tasks = append(req.Tasks, dto.TaskInput{
			Name:          t.Name,
			DurationHours: t.Hours,
			Days:          t.Days,
			PreferredTime: t.Prefer,
		})
	}
	for _, e := range pf.Events {
		req.Events = append(req.Events, dto.EventInput{
			Name:          e.Name,
			Date:          e.Date,
			Start:         e.Start,
			DurationHours: e.Hours,
		})
	}
	return req
}
