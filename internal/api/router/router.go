package router

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"resume-screener-go/internal/api/handler"
	"resume-screener-go/internal/config"
	"resume-screener-go/internal/constants"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册API路由
// 配置了API密钥时，除健康检查外的所有端点都要求 X-API-Key
func RegisterRoutes(h *server.Hertz, cfg *config.Config, screeningHandler *handler.ScreeningHandler) {
	h.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")
	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:X-API-Key", ""),
			keyauth.WithValidator(func(c context.Context, ctx *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
		))
	}

	api.POST("/resume/upload", func(c context.Context, ctx *app.RequestContext) {
		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}
		if fileHeader.Size > constants.MaxResumeFileSize {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件超过大小上限"})
			return
		}
		position := ctx.PostForm("position")

		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := screeningHandler.HandleResumeUpload(c, file, fileHeader.Filename, position)
		if err != nil {
			if errors.Is(err, handler.ErrFileTooLarge) {
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件超过大小上限"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/resume/:submission_id", func(c context.Context, ctx *app.RequestContext) {
		resp, err := screeningHandler.HandleGetResume(c, ctx.Param("submission_id"))
		if err != nil {
			if errors.Is(err, handler.ErrSubmissionNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "简历提交不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.DELETE("/resume/:submission_id", func(c context.Context, ctx *app.RequestContext) {
		if err := screeningHandler.HandleDeleteResume(c, ctx.Param("submission_id")); err != nil {
			if errors.Is(err, handler.ErrSubmissionNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "简历提交不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, utils.H{"status": "deleted"})
	})

	api.POST("/screening/run", func(c context.Context, ctx *app.RequestContext) {
		var req handler.ScreenRequest
		if body := ctx.Request.Body(); len(body) > 0 {
			if err := json.Unmarshal(body, &req); err != nil {
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": "请求体格式错误"})
				return
			}
		}

		report, err := screeningHandler.HandleScreenDirectory(c, &req)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, report)
	})

	api.GET("/screening/runs", func(c context.Context, ctx *app.RequestContext) {
		limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))
		offset, _ := strconv.Atoi(ctx.DefaultQuery("offset", "0"))

		resp, err := screeningHandler.HandleListRuns(c, limit, offset)
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/screening/runs/:run_id", func(c context.Context, ctx *app.RequestContext) {
		runID := ctx.Param("run_id")

		resp, err := screeningHandler.HandleGetRun(c, runID)
		if err != nil {
			if errors.Is(err, handler.ErrRunNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "筛选运行不存在"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/results", func(c context.Context, ctx *app.RequestContext) {
		minGrade, _ := strconv.Atoi(ctx.DefaultQuery("min_score", "0"))
		limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "0"))

		resp, err := screeningHandler.HandleLatestResults(c, minGrade, limit)
		if err != nil {
			if errors.Is(err, handler.ErrRunNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "暂无筛选运行"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	api.GET("/results/stats", func(c context.Context, ctx *app.RequestContext) {
		run, err := screeningHandler.HandleLatestStats(c)
		if err != nil {
			if errors.Is(err, handler.ErrRunNotFound) {
				ctx.JSON(consts.StatusNotFound, utils.H{"error": "暂无筛选运行"})
				return
			}
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
			return
		}
		ctx.JSON(consts.StatusOK, run)
	})

	api.GET("/positions", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, screeningHandler.HandleListPositions())
	})
}
