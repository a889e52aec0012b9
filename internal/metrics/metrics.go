package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MarksCreated counts fresh attendance marks written to the ledger.
	MarksCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_marks_created_total",
		Help: "Number of attendance marks created.",
	})

	// DuplicatesRemoved counts marks deleted by duplicate cleanup.
	DuplicatesRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "attendance_duplicates_removed_total",
		Help: "Number of duplicate marks removed by cleanup.",
	})

	// AbsenteesFound counts absentees seen by reconciliation runs.
	AbsenteesFound = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absentees_found_total",
		Help: "Number of absentees detected by reconciliation runs.",
	})

	// EmailsSent counts absence notifications handed to the transport.
	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absentee_emails_sent_total",
		Help: "Number of absence notification emails sent.",
	})

	// EmailFailures counts transport-level delivery failures.
	EmailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "absentee_email_failures_total",
		Help: "Number of absence notification emails that failed to send.",
	})
)
