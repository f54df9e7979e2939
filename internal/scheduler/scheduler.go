// Package scheduler 进程内的定时触发器，周期性执行战斗和护盾回复结算。
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jacl-coder/HomeDefense-Server/internal/game"
)

// Job 周期任务
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler 定时触发器
type Scheduler struct {
	jobs   []Job
	locker Locker

	mu        sync.Mutex
	wg        sync.WaitGroup
	shutdown  chan struct{}
	cancel    context.CancelFunc
	isRunning bool
}

// New 创建定时触发器，locker 为空时使用进程内锁
func New(locker Locker, jobs ...Job) *Scheduler {
	if locker == nil {
		locker = NewLocalLocker()
	}
	return &Scheduler{jobs: jobs, locker: locker}
}

// EngineJobs 引擎的两个结算任务
func EngineJobs(engine *game.Engine, combatInterval, regenInterval time.Duration) []Job {
	return []Job{
		{
			Name:     "combat",
			Interval: combatInterval,
			Run: func(ctx context.Context) error {
				res, err := engine.RunCombatTick(ctx)
				if err != nil {
					return err
				}
				log.Printf("战斗结算: 处理 %d 个家园, 失败 %d", res.ProcessedCount, res.FailedCount)
				return nil
			},
		},
		{
			Name:     "regen",
			Interval: regenInterval,
			Run: func(ctx context.Context) error {
				res, err := engine.RunRegenTick(ctx)
				if err != nil {
					return err
				}
				log.Printf("护盾回复: 处理 %d 个家园, 失败 %d", res.ProcessedCount, res.FailedCount)
				return nil
			},
		},
	}
}

// Start 为每个任务启动一个定时循环
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return fmt.Errorf("调度器已经在运行")
	}
	for _, job := range s.jobs {
		if job.Interval <= 0 || job.Run == nil {
			return fmt.Errorf("任务 %q 配置无效", job.Name)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.shutdown = make(chan struct{})
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.isRunning = true
	log.Printf("调度器启动，任务数: %d", len(s.jobs))
	return nil
}

// Stop 停止所有定时循环并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	close(s.shutdown)
	s.cancel()
	s.isRunning = false
	s.mu.Unlock()

	s.wg.Wait()
	log.Println("调度器已停止")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	defer s.wg.Done()
	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.RunOnce(ctx, job); err != nil {
				log.Printf("任务 %s 执行失败: %v", job.Name, err)
			}
		case <-s.shutdown:
			return
		}
	}
}

// RunOnce 获取锁后执行一次任务，未拿到锁时返回 false。
// 锁在周期内保持，执行失败时释放，以便其他实例重试。
func (s *Scheduler) RunOnce(ctx context.Context, job Job) (bool, error) {
	ok, err := s.locker.Acquire(ctx, job.Name, lockTTL(job.Interval))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := job.Run(ctx); err != nil {
		if rerr := s.locker.Release(context.Background(), job.Name); rerr != nil {
			log.Printf("任务 %s 释放锁失败: %v", job.Name, rerr)
		}
		return true, err
	}
	return true, nil
}

// lockTTL 比周期略短，下一个周期一定能重新获取
func lockTTL(interval time.Duration) time.Duration {
	ttl := interval * 9 / 10
	if ttl <= 0 {
		ttl = interval
	}
	return ttl
}
