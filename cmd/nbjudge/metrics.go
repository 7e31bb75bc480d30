package main

import (
	"github.com/criyle/go-nbjudge/grader"
	"github.com/criyle/go-nbjudge/store"
	"github.com/criyle/go-nbjudge/worker"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

const (
	metricsNamespace = "nbjudge"
)

var (
	// 10us -> 1s
	timeBuckets = []float64{
		0.00001, 0.00002, 0.00005, 0.0001, 0.0002, 0.0005, 0.001, 0.002,
		0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1,
	}

	// 0 -> 100 by 10
	scoreBuckets = prometheus.LinearBuckets(0, 10, 11)

	gradeCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "grade_total",
		Help:      "Number of graded requests",
	}, []string{"mode", "outcome"})

	gradeScoreHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "grade_score",
		Help:      "Histogram for the score",
		Buckets:   scoreBuckets,
	}, []string{"mode"})

	gradeTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "grade_duration_seconds",
		Help:      "Histogram for the grading and report rendering time",
		Buckets:   timeBuckets,
	}, []string{"mode"})

	specOpCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "spec_store_operations_total",
		Help:      "Number of specification store operations",
	}, []string{"op", "status"})
)

func init() {
	prometheus.MustRegister(gradeCount, gradeScoreHist, gradeTimeHist)
	prometheus.MustRegister(specOpCount)
}

func resultMode(r grader.Result) string {
	switch r.(type) {
	case *grader.SequenceResult:
		return grader.ModeSequence.String()
	case *grader.PointsResult:
		return grader.ModeTestCases.String()
	default:
		return "error"
	}
}

func gradeObserve(res worker.Response) {
	if res.Error != nil {
		gradeCount.WithLabelValues("none", "cancelled").Inc()
		return
	}
	mode := resultMode(res.Result)
	score, passed := res.Result.Verdict()
	outcome := "failed"
	switch {
	case mode == "error":
		outcome = "error"
	case passed:
		outcome = "passed"
	}
	gradeCount.WithLabelValues(mode, outcome).Inc()
	gradeScoreHist.WithLabelValues(mode).Observe(score)
	gradeTimeHist.WithLabelValues(mode).Observe(res.Time.Seconds())
}

var _ store.SpecStore = &metricsSpecStore{}

type metricsSpecStore struct {
	store.SpecStore
}

func newMetricsSpecStore(s store.SpecStore) store.SpecStore {
	return &metricsSpecStore{SpecStore: s}
}

func observeOp(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	specOpCount.WithLabelValues(op, status).Inc()
}

func (m *metricsSpecStore) Add(name string, content []byte) (string, error) {
	id, err := m.SpecStore.Add(name, content)
	observeOp("add", err)
	return id, err
}

func (m *metricsSpecStore) Put(id, name string, content []byte) error {
	err := m.SpecStore.Put(id, name, content)
	observeOp("put", err)
	return err
}

func (m *metricsSpecStore) Get(id string) (*store.Entry, error) {
	e, err := m.SpecStore.Get(id)
	observeOp("get", err)
	return e, err
}

func (m *metricsSpecStore) Remove(id string) bool {
	ok := m.SpecStore.Remove(id)
	if ok {
		observeOp("remove", nil)
	} else {
		observeOp("remove", store.ErrNotFound)
	}
	return ok
}

func initGinMetrics(r *gin.Engine) {
	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "gin",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.FullPath()
	}
	r.Use(p.HandlerFunc())
}
