package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "techquiz"

var (
	// DrawDuration measures a full draw: store reads, counter merge and selection.
	DrawDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "draw_duration_seconds",
		Help:      "Time spent building one question selection.",
		Buckets:   prometheus.DefBuckets,
	})

	DrawPoolSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "draw_pool_size",
		Help:      "Number of candidate questions considered per draw.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})

	// DrawShortfall counts questions requested but not available in the pool.
	DrawShortfall = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "draw_shortfall_total",
		Help:      "Questions requested beyond what the pool could supply.",
	})

	QuestionsShown = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_shown_total",
		Help:      "Questions presented to users.",
	}, []string{"category"})

	QuestionsMissed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questions_missed_total",
		Help:      "Drawn questions that ended a session unshown.",
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "question_cache_lookups_total",
		Help:      "Question cache lookups by kind and result.",
	}, []string{"kind", "result"})

	SourceErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "question_source_errors_total",
		Help:      "Failed reads against the question store.",
	}, []string{"op"})
)
