package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/screencam/internal/camera"
	"github.com/ivlev/screencam/internal/config"
	"github.com/ivlev/screencam/internal/detect"
	"github.com/ivlev/screencam/internal/renderer"
	"github.com/ivlev/screencam/internal/store"
	"github.com/ivlev/screencam/internal/system"
	"github.com/ivlev/screencam/internal/timeline"
)

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	dbPtr := flag.String("db", "recordings.db", "Путь к базе телеметрии записей")
	recPtr := flag.String("recording", "", "ID записи (по умолчанию: все записи в базе)")
	tuningPtr := flag.String("tuning", "", "Путь к YAML-файлу тюнинга (по умолчанию: встроенные значения)")
	outPtr := flag.String("out", filepath.Join("output", "scenarios"), "Директория для сценариев и траекторий")
	exportPtr := flag.Bool("export-path", false, "Выгрузить детерминированную траекторию камеры в CSV")
	fpsPtr := flag.Int("fps", 60, "FPS траектории")
	cursorStylePtr := flag.String("cursor-style", "arrow", "Стиль курсора: arrow, pointer, ibeam, crosshair")
	cursorScalePtr := flag.Float64("cursor-scale", 1.0, "Масштаб курсора")
	workersPtr := flag.Int("workers", 0, "Потоки (0 - авто по CPU и памяти)")

	flag.Parse()

	tuning := config.DefaultTuning()
	if *tuningPtr != "" {
		var err error
		tuning, err = config.LoadTuning(*tuningPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка тюнинга: %v", err)
		}
		fmt.Printf("[*] Используется тюнинг: %s\n", *tuningPtr)
	}

	st, err := store.Open(*dbPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка базы: %v", err)
	}
	defer st.Close()

	ids := []string{*recPtr}
	if *recPtr == "" {
		ids, err = st.ListRecordings()
		if err != nil {
			log.Fatalf("[-] Ошибка базы: %v", err)
		}
		if len(ids) == 0 {
			log.Fatalf("[-] Ошибка: в базе %s нет записей", *dbPtr)
		}
	}

	if err := os.MkdirAll(*outPtr, 0755); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	workers := *workersPtr
	if workers <= 0 {
		workers = system.RenderWorkers()
	}
	if workers > len(ids) {
		workers = len(ids)
	}

	fmt.Println("--- [SCREENCAM: VIRTUAL CAMERA] ---")
	fmt.Printf("[*] База: %s | Записей: %d | Потоки: %d\n", *dbPtr, len(ids), workers)
	fmt.Println("-----------------------------------")

	cursor := &camera.CursorSettings{Style: *cursorStylePtr, Scale: *cursorScalePtr}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, id := range ids {
		g.Go(func() error {
			return processRecording(st, id, tuning, *outPtr, *exportPtr, *fpsPtr, cursor)
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("[-] Ошибка обработки: %v", err)
	}

	fmt.Printf("[+++] Успех! Результаты: %s\n", *outPtr)
}

func processRecording(st *store.Store, id string, tuning config.Tuning, outDir string, exportPath bool, fps int, cursor *camera.CursorSettings) error {
	rec, err := st.LoadRecording(id)
	if err != nil {
		return err
	}

	blocks := detect.Detect(rec, tuning.Detect)
	scenario := &timeline.Scenario{
		Version:   "1.0",
		Recording: id,
		Blocks:    blocks,
	}

	scenarioPath := filepath.Join(outDir, fmt.Sprintf("zoom_%s.yaml", id))
	if err := timeline.WriteScenario(scenario, scenarioPath); err != nil {
		return fmt.Errorf("ошибка записи сценария %s: %w", scenarioPath, err)
	}

	if exportPath {
		samples := renderer.SamplePath(rec, scenario, tuning.Camera, fps, cursor)
		csvPath := filepath.Join(outDir, fmt.Sprintf("path_%s.csv", id))
		if err := renderer.WritePathCSV(samples, csvPath); err != nil {
			return fmt.Errorf("ошибка записи траектории %s: %w", csvPath, err)
		}
	}

	fmt.Printf("[>] Готово: %s | Зум-блоков: %d\n", id, len(blocks))
	return nil
}
