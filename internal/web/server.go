package web

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/nfnt/resize"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"image-duplicate-finder/internal/archive"
	"image-duplicate-finder/internal/config"
	"image-duplicate-finder/internal/reporter"
)

// thumbnailWidth is the longest edge served by the preview endpoint.
const thumbnailWidth = 320

// Server represents the web dashboard server
type Server struct {
	addr          string
	report        *reporter.Report
	trashPath     string
	leaveRef      bool
	debug         bool
	runVisualFunc func()
	runNamesFunc  func()
	allFiles      []reporter.FileInfo
	previewSem    chan struct{}
	scanDir       string
	config        *config.AppConfig
	mu            sync.Mutex
}

// NewServer creates a new web dashboard server
func NewServer(port int, report *reporter.Report, trashPath string, leaveRef bool, runVisualFunc, runNamesFunc func(), allFiles []reporter.FileInfo, scanDir string, appConfig *config.AppConfig) *Server {
	if allFiles == nil {
		allFiles = []reporter.FileInfo{}
	}
	return &Server{
		addr:          fmt.Sprintf(":%d", port),
		report:        report,
		trashPath:     trashPath,
		leaveRef:      leaveRef,
		runVisualFunc: runVisualFunc,
		runNamesFunc:  runNamesFunc,
		allFiles:      allFiles,
		previewSem:    make(chan struct{}, 4), // Allow 4 concurrent decodes
		scanDir:       scanDir,
		config:        appConfig,
	}
}

// SetDebug enables or disables debug mode
func (s *Server) SetDebug(enabled bool) {
	s.debug = enabled
}

// Start starts the web server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName: "Image Duplicate Finder Dashboard",
	})

	app.Use(cors.New())

	if s.debug {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	app.Get("/", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(dashboardHTML)
	})

	api := app.Group("/api")

	api.Get("/report", func(c *fiber.Ctx) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		return c.JSON(s.report)
	})

	api.Post("/run-visual", func(c *fiber.Ctx) error {
		if s.runVisualFunc != nil {
			go s.runVisualFunc()
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	api.Post("/run-names", func(c *fiber.Ctx) error {
		if s.runNamesFunc != nil {
			go s.runNamesFunc()
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	api.Get("/preview", s.handlePreview)

	api.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(s.config)
	})

	api.Post("/config", func(c *fiber.Ctx) error {
		var cfg config.AppConfig
		if err := c.BodyParser(&cfg); err != nil {
			return c.Status(fiber.StatusBadRequest).SendString(err.Error())
		}
		*s.config = cfg
		if err := config.SaveConfig(s.config); err != nil {
			log.Printf("⚠️  Could not save settings: %v", err)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	api.Post("/trash", s.handleTrash)

	api.Post("/open-directory", func(c *fiber.Ctx) error {
		path := c.Query("path")
		if path == "" {
			path = s.scanDir
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			absPath = path
		}

		log.Printf("📂 Opening directory in explorer: %s", absPath)
		if err := openPath(absPath); err != nil {
			log.Printf("⚠️ Could not open directory: %v", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
		return c.SendStatus(fiber.StatusOK)
	})

	log.Printf("📡 Dashboard listening on %s", s.addr)
	return app.Listen(s.addr)
}

// knownFile restricts file endpoints to paths discovered by the scan, so the
// dashboard cannot be used to read or move arbitrary files.
func (s *Server) knownFile(path string) (reporter.FileInfo, bool) {
	for _, f := range s.allFiles {
		if f.Path == path {
			return f, true
		}
	}
	return reporter.FileInfo{}, false
}

func (s *Server) handlePreview(c *fiber.Ctx) error {
	path := c.Query("path")
	f, ok := s.knownFile(path)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}

	s.previewSem <- struct{}{}
	defer func() { <-s.previewSem }()

	data, err := previewData(f)
	if err != nil {
		if s.debug {
			log.Printf("[WEB] Preview failed for %s: %v", f.Name, err)
		}
		return c.SendStatus(fiber.StatusUnprocessableEntity)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return c.SendStatus(fiber.StatusUnprocessableEntity)
	}

	thumb := resize.Thumbnail(thumbnailWidth, thumbnailWidth, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	c.Set("Content-Type", "image/jpeg")
	c.Set("Cache-Control", "max-age=3600")
	return c.Send(buf.Bytes())
}

func previewData(f reporter.FileInfo) ([]byte, error) {
	switch f.Type {
	case "zip", "rar", "7z":
		data, _, err := archive.FindLargestImage(f.Path)
		return data, err
	default:
		return os.ReadFile(f.Path)
	}
}

func (s *Server) handleTrash(c *fiber.Ctx) error {
	path := c.Query("path")
	f, ok := s.knownFile(path)
	if !ok {
		return c.SendStatus(fiber.StatusNotFound)
	}
	if s.trashPath == "" {
		return c.Status(fiber.StatusConflict).SendString("no trash path configured")
	}

	if err := os.MkdirAll(s.trashPath, 0755); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}

	dest := filepath.Join(s.trashPath, f.Name)
	if err := os.Rename(f.Path, dest); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
	}
	log.Printf("🗑️  Moved %s to %s", f.Name, s.trashPath)

	if s.leaveRef {
		note := fmt.Sprintf("Moved to trash by image-duplicate-finder.\nOriginal: %s\nNow at: %s\n", f.Path, dest)
		if err := os.WriteFile(f.Path+".moved.txt", []byte(note), 0644); err != nil {
			log.Printf("⚠️  Could not leave reference marker: %v", err)
		}
	}

	return c.SendStatus(fiber.StatusOK)
}

func openPath(path string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", path).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", path).Start()
	case "darwin":
		return exec.Command("open", path).Start()
	default:
		return fmt.Errorf("unsupported platform")
	}
}

// OpenBrowser points the default browser at the dashboard URL
func OpenBrowser(url string) {
	if err := openPath(url); err != nil {
		log.Printf("⚠️ Could not open browser: %v", err)
	}
}
