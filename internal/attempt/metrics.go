package attempt

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizdeck_attempts_started_total",
		Help: "Number of quiz attempts started.",
	})

	attemptsFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizdeck_attempts_finished_total",
		Help: "Number of quiz attempts finished and scored.",
	})

	responsesSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quizdeck_responses_submitted_total",
		Help: "Number of question responses recorded, by grading outcome.",
	}, []string{"correctness"})
)
