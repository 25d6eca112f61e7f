package scheduler

import (
	"context"
	"fmt"
	"time"

	"cabinet-suite-core/internal/app/config"

	"github.com/go-co-op/gocron"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Job tâche périodique fournie par un module via le groupe fx "jobs"
type Job struct {
	Name     string
	Interval time.Duration
	Timeout  time.Duration
	Run      func(ctx context.Context) error
}

type Params struct {
	fx.In

	Config *config.Config
	Logger *zap.Logger
	Jobs   []Job `group:"jobs"`
}

// Scheduler enveloppe gocron; une exécution à la fois par tâche
type Scheduler struct {
	cron    *gocron.Scheduler
	log     *zap.Logger
	enabled bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewScheduler(p Params) (*Scheduler, error) {
	loc := p.Config.Agenda.Location
	if loc == nil {
		loc = time.Local
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:    gocron.NewScheduler(loc),
		log:     p.Logger.Named("scheduler"),
		enabled: p.Config.Scheduler.Enabled,
		ctx:     ctx,
		cancel:  cancel,
	}

	for _, job := range p.Jobs {
		if err := s.Register(job); err != nil {
			cancel()
			return nil, err
		}
	}
	return s, nil
}

// Register planifie job; un intervalle nul désactive la tâche
func (s *Scheduler) Register(job Job) error {
	if job.Interval <= 0 {
		s.log.Info("tâche désactivée", zap.String("job", job.Name))
		return nil
	}
	if job.Run == nil {
		return fmt.Errorf("tâche %s sans fonction", job.Name)
	}

	_, err := s.cron.Every(job.Interval).
		SingletonMode().
		WaitForSchedule().
		Tag(job.Name).
		Do(func() { s.execute(job) })
	if err != nil {
		return fmt.Errorf("planification %s: %w", job.Name, err)
	}
	return nil
}

func (s *Scheduler) execute(job Job) {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Error("échec tâche", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.log.Debug("tâche terminée", zap.String("job", job.Name), zap.Duration("duree", time.Since(start)))
}

// Len nombre de tâches planifiées
func (s *Scheduler) Len() int {
	return s.cron.Len()
}

func (s *Scheduler) Start() {
	if !s.enabled {
		fmt.Printf("[SCHEDULER] ⏸️ Désactivé (SCHEDULER_ENABLED=false)\n")
		return
	}
	s.cron.StartAsync()
	fmt.Printf("[SCHEDULER] ✅ %d tâche(s) planifiée(s)\n", s.cron.Len())
}

func (s *Scheduler) Stop() {
	s.cancel()
	if s.cron.IsRunning() {
		s.cron.Stop()
	}
	fmt.Printf("[SCHEDULER] ✅ Arrêté\n")
}

func RegisterLifecycle(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
}

// AsJob annote un constructeur de Job pour le groupe fx "jobs"
func AsJob(constructor interface{}) interface{} {
	return fx.Annotate(constructor, fx.ResultTags(`group:"jobs"`))
}

var Module = fx.Options(
	fx.Provide(NewScheduler),
	fx.Invoke(RegisterLifecycle),
)
