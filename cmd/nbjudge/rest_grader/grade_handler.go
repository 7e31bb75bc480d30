package restgrader

import (
	"context"
	"errors"
	"net/http"

	"github.com/criyle/go-nbjudge/cmd/nbjudge/model"
	"github.com/criyle/go-nbjudge/store"
	"github.com/criyle/go-nbjudge/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type gradeHandle struct {
	worker worker.Worker
	specs  store.SpecStore
	logger *zap.Logger
}

// NewGradeHandle creates a new grade handle
func NewGradeHandle(worker worker.Worker, specs store.SpecStore, logger *zap.Logger) Register {
	return &gradeHandle{
		worker: worker,
		specs:  specs,
		logger: logger,
	}
}

func (g *gradeHandle) Register(r *gin.Engine) {
	r.POST("/grade", g.handleGrade)
}

func (g *gradeHandle) handleGrade(ctx *gin.Context) {
	var req model.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}

	r, err := model.ConvertRequest(&req, g.specs)
	if err != nil {
		ctx.Error(err)
		status := http.StatusBadRequest
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		ctx.AbortWithStatusJSON(status, err.Error())
		return
	}
	g.logger.Debug("request", zap.String("requestId", r.RequestID), zap.Bool("failed", r.Execution.Failed()))
	rt := g.wait(ctx.Request.Context(), r)
	g.logger.Debug("response", zap.Stringer("response", rt))
	if rt.Error != nil {
		ctx.Error(rt.Error)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, rt.Error.Error())
		return
	}
	ctx.JSON(http.StatusOK, model.ConvertResponse(rt))
}

// wait returns the worker response, or the context error once the client
// has gone away
func (g *gradeHandle) wait(ctx context.Context, r *worker.Request) worker.Response {
	select {
	case rt := <-g.worker.Submit(ctx, r):
		return rt
	case <-ctx.Done():
		return worker.Response{RequestID: r.RequestID, Error: ctx.Err()}
	}
}
