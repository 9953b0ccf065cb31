package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jini/internal/external/molit"
	"github.com/wonny/jini/internal/scheduler"
	"github.com/wonny/jini/internal/scheduler/jobs"
	"github.com/wonny/jini/internal/store"
	"github.com/wonny/jini/pkg/config"
	"github.com/wonny/jini/pkg/httputil"
	"github.com/wonny/jini/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `스케줄러를 시작하거나 작업을 관리합니다.

등록되는 작업:
- monthly_collection: 매월 2일 03:00 (전월 실거래 수집)
- analysis:           매월 2일 05:00 (전 변형 통계 재계산)

Subcommands:
  start   - 스케줄러 시작 (작업 API 포함)
  run     - 특정 작업 즉시 실행 후 종료

Example:
  go run ./cmd/jini scheduler start
  go run ./cmd/jini scheduler run monthly_collection`,
}

var schedulerStartCmd = &cobra.Command{
	Use:   "start",
	Short: "스케줄러 시작",
	Long: `스케줄러를 시작하고 등록된 모든 작업을 스케줄합니다.

스케줄러는 Ctrl+C로 종료할 수 있습니다.`,
	RunE: runScheduler,
}

var schedulerRunCmd = &cobra.Command{
	Use:   "run [job_name]",
	Short: "특정 작업 즉시 실행",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchedulerJob,
}

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
}

// buildScheduler wires the standard job set.
func buildScheduler(cfg *config.Config, st Store, log *logger.Logger) (*scheduler.Scheduler, error) {
	httpClient := httputil.New(log).WithRateLimit(cfg.Molit.RatePerSec)
	client := molit.NewClient(httpClient, cfg, log)
	collector := molit.NewCollector(client, st, log)

	exporter, err := store.NewCSVExporter(cfg.Pipeline.ResultDir, log.Component("csv"))
	if err != nil {
		return nil, err
	}

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewMonthlyCollectionJob(collector, cfg, log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewAnalysisJob(st, st, st, exporter, cfg, log)); err != nil {
		return nil, err
	}
	return sched, nil
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== jini Scheduler ===")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sched, err := buildScheduler(cfg, st, log)
	if err != nil {
		return err
	}

	sched.Start()
	defer sched.Stop()

	for _, name := range sched.Jobs() {
		fmt.Printf("  registered: %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]
	fmt.Printf("=== jini Scheduler: run %s ===\n", jobName)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg)

	st, closeStore, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	sched, err := buildScheduler(cfg, st, log)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := sched.RunNow(jobName); err != nil {
		return err
	}

	// RunNow는 비동기라 이력에 결과가 잡힐 때까지 대기한다
	for {
		records, err := sched.History(jobName)
		if err != nil {
			return err
		}
		if len(records) > 0 {
			last := records[len(records)-1]
			if !last.Success {
				return fmt.Errorf("job %s failed: %s", jobName, last.Error)
			}
			PrintCompletion(fmt.Sprintf("%s completed in %.2fs", jobName, time.Since(start).Seconds()))
			return nil
		}
		time.Sleep(time.Second)
	}
}
