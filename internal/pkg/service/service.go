package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/airenas/scribe/internal/pkg/api"
	"github.com/airenas/scribe/internal/pkg/broadcast"
	"github.com/airenas/scribe/internal/pkg/jobs"
	"github.com/airenas/scribe/internal/pkg/llm"
	"github.com/airenas/scribe/internal/pkg/utils"

	"github.com/airenas/go-app/pkg/goapp"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Jobs provides job submission and lookup
type Jobs interface {
	Submit(filename string, size int64, videoPath, targetLang, llmModel string) (*jobs.Job, error)
	Get(id string) (*jobs.Job, error)
	ListAll() []*jobs.Job
	QueueDepth() int
	Stats() map[string]int
}

// LLM provides text generation provider info
type LLM interface {
	Provider() string
	CheckStatus(ctx context.Context) *llm.StatusData
	ListModels(ctx context.Context) ([]string, error)
}

// WSConnHandler websocket connection wrapper
type WSConnHandler interface {
	HandleConnection(broadcast.WsConn) error
	ConnectionCount() int
}

// Data keeps data required for service work
type Data struct {
	Port        int
	Jobs        Jobs
	LLM         LLM
	WSHandler   WSConnHandler
	UploadDir   string
	WorkerCount int
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP scribe service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 180 * time.Second
	e.Server.WriteTimeout = 5 * time.Minute

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.Jobs == nil {
		return errors.New("no jobs registry")
	}
	if data.LLM == nil {
		return errors.New("no LLM service")
	}
	if data.WSHandler == nil {
		return errors.New("no WSHandler")
	}
	if data.UploadDir == "" {
		return errors.New("no upload dir")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("scribe", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.POST("/api/upload", upload(data))
	e.GET("/api/jobs", listJobs(data))
	e.GET("/api/jobs/:id", getJob(data))
	e.GET("/api/status", systemStatus(data))
	e.GET("/api/download/:id", download(data, finalTranscript))
	e.GET("/api/download/:id/raw", download(data, rawTranscript))
	e.GET("/api/llm/status", llmStatus(data))
	e.GET("/api/llm/models", llmModels(data))
	e.GET("/live", live(data))
	e.GET("/ws", subscribeHandler(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

func upload(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("upload method")()

		fHeader, err := c.FormFile(api.PrmFile)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "no file")
		}
		if fHeader.Filename == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "no file name")
		}
		ext := strings.ToLower(filepath.Ext(fHeader.Filename))
		if !utils.SupportMediaExt(ext) {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported file format '%s'", ext))
		}
		targetLang := c.FormValue(api.PrmTargetLanguage)
		if targetLang != "" && !api.SupportLanguage(targetLang) {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("unsupported language '%s'", targetLang))
		}
		llmModel := c.FormValue(api.PrmLLMModel)

		videoPath, err := utils.MakeValidateFileName(data.UploadDir, fHeader.Filename)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "wrong file name: "+fHeader.Filename)
		}
		size, err := saveUpload(fHeader, videoPath)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError, "can't save file")
		}

		job, err := data.Jobs.Submit(fHeader.Filename, size, videoPath, targetLang, llmModel)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, job)
	}
}

func saveUpload(fHeader *multipart.FileHeader, dst string) (int64, error) {
	src, err := fHeader.Open()
	if err != nil {
		return 0, fmt.Errorf("can't open upload: %w", err)
	}
	defer src.Close()
	out, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("can't create '%s': %w", dst, err)
	}
	defer out.Close()
	size, err := io.Copy(out, src)
	if err != nil {
		return 0, fmt.Errorf("can't write '%s': %w", dst, err)
	}
	return size, nil
}

func listJobs(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, data.Jobs.ListAll())
	}
}

func getJob(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id := c.Param("id")
		if id == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "No ID")
		}
		job, err := data.Jobs.Get(id)
		if err != nil {
			if errors.Is(err, utils.ErrJobNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Job not found")
			}
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, job)
	}
}

type workersInfo struct {
	Count int `json:"count"`
}

type queueInfo struct {
	Size        int `json:"size"`
	Connections int `json:"connections"`
}

type statusResult struct {
	Workers workersInfo    `json:"workers"`
	Queue   queueInfo      `json:"queue"`
	Jobs    map[string]int `json:"jobs"`
}

func systemStatus(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		res := statusResult{
			Workers: workersInfo{Count: data.WorkerCount},
			Queue:   queueInfo{Size: data.Jobs.QueueDepth(), Connections: data.WSHandler.ConnectionCount()},
			Jobs:    data.Jobs.Stats(),
		}
		return c.JSON(http.StatusOK, res)
	}
}

type transcriptKind int

const (
	finalTranscript transcriptKind = iota
	rawTranscript
)

func download(data *Data, kind transcriptKind) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("download method")()

		id := c.Param("id")
		if id == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "No ID")
		}
		job, err := data.Jobs.Get(id)
		if err != nil {
			if errors.Is(err, utils.ErrJobNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "Job not found")
			}
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		path := job.TranscriptPath
		suffix := "_transcript.txt"
		if kind == rawTranscript {
			path = job.TranscriptRawPath
			suffix = "_transcript_raw.txt"
		}
		if path == "" || !utils.FileExists(path) {
			return echo.NewHTTPError(http.StatusNotFound, "Transcript not found")
		}
		return c.Attachment(path, utils.FileStem(job.Filename)+suffix)
	}
}

func llmStatus(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, data.LLM.CheckStatus(c.Request().Context()))
	}
}

type modelsResult struct {
	Provider string   `json:"provider"`
	Models   []string `json:"models"`
}

func llmModels(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		models, err := data.LLM.ListModels(c.Request().Context())
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusServiceUnavailable, "can't list models")
		}
		return c.JSON(http.StatusOK, modelsResult{Provider: data.LLM.Provider(), Models: models})
	}
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

func subscribeHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return err
		}
		defer ws.Close()

		// snapshot of known jobs before live updates start
		for _, job := range data.Jobs.ListAll() {
			if err := ws.WriteJSON(job); err != nil {
				goapp.Log.Error().Err(err).Msg("can't send snapshot")
				return nil
			}
		}
		return data.WSHandler.HandleConnection(ws)
	}
}
