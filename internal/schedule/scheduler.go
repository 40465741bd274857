package schedule

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// StartAnalysisScheduler starts a cron-based scheduler that periodically
// analyzes the newest transcript export in transcriptDir. The schedule is a
// standard 5-field cron expression (minute hour day-of-month month
// day-of-week). Files already analyzed (mod time at or before the previous
// tick's pick) are skipped.
func StartAnalysisScheduler(scheduleExpr, transcriptDir string, loc *time.Location, run func(path string)) {
	scheduleExpr = strings.TrimSpace(scheduleExpr)
	if scheduleExpr == "" {
		log.Println("Scheduled analysis disabled (analyze_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(scheduleExpr)
	if err != nil {
		log.Printf("Invalid analyze_schedule '%s': %v — scheduled analysis disabled", scheduleExpr, err)
		return
	}
	log.Printf("Scheduled analysis (cron: %s) over %s", scheduleExpr, transcriptDir)

	go func() {
		var lastAnalyzed time.Time
		for {
			now := time.Now().In(loc)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next scheduled analysis at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			path, modTime, err := newestTranscript(transcriptDir)
			if err != nil {
				log.Printf("Scheduled analysis skipped: %v", err)
				continue
			}
			if path == "" || !modTime.After(lastAnalyzed) {
				log.Printf("Scheduled analysis skipped: no new transcript in %s", transcriptDir)
				continue
			}
			lastAnalyzed = modTime
			log.Printf("Scheduled analysis starting file=%s", path)
			run(path)
		}
	}()
}

func newestTranscript(dir string) (string, time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", time.Time{}, err
	}
	var newest string
	var newestTime time.Time
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newestTime) {
			newest = filepath.Join(dir, entry.Name())
			newestTime = info.ModTime()
		}
	}
	return newest, newestTime, nil
}
