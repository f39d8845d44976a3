package example

type TaskStatus string

const (
	TaskStatusOpen TaskStatus = "open"
	TaskStatusDone TaskStatus = "done"
)

type PriorityHint string

const (
	PriorityHigh PriorityHint = "high"
)

type Task struct {
	Title        string
	Status       TaskStatus
	PriorityHint *PriorityHint
}

func bad() {
	t := &Task{}
	t.Status = "done" // want "enum field Status assigned string literal"

	_ = Task{Title: "Ship report", Status: "open"} // want "enum field Status assigned string literal"
}

func good() {
	t := &Task{}
	t.Status = TaskStatusDone // OK: using constant
	t.Title = "Ship report"   // OK: not an enum

	p := PriorityHigh
	_ = Task{Status: TaskStatusOpen, PriorityHint: &p}
}

func alsoGood() {
	// OK: map keys are not fields
	counts := map[string]int{"open": 1}
	_ = counts

	// OK: conversion, not a literal
	status := TaskStatus("blocked")
	_ = Task{Status: status}
}
