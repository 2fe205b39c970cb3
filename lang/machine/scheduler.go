package machine

import (
	"github.com/scriptvm/eclrun/lang/container"
)

// Scheduler drives a cooperatively scheduled list of tasks to quiescence,
// one tick at a time. Tasks run in list order; a task spawned by CALLASYNC
// during a tick is appended to the tail and does not run until the next
// tick, which keeps spawn ordering deterministic.
type Scheduler struct {
	prog  *container.Program
	glob  *Globals
	tasks []*Task
	// pending collects tasks spawned during the tick currently in
	// progress, so they are only made runnable on the following tick.
	pending []*Task
}

// NewScheduler returns a scheduler with a single root task starting at
// startAddr.
func NewScheduler(prog *container.Program, g *Globals, startAddr uint32, rootName string) *Scheduler {
	s := &Scheduler{prog: prog, glob: g}
	s.tasks = []*Task{NewTask(rootName, startAddr)}
	return s
}

// Tick advances every live task until it blocks or finishes, then removes
// finished tasks and admits any tasks spawned during the tick. It reports
// whether any task is still alive afterward. A task failure aborts the tick
// immediately: no further task gets to run, since the whole interpretation
// is one transaction and a failure terminates it.
func (s *Scheduler) Tick() (bool, error) {
	for _, t := range s.tasks {
		if t.State != TaskRunning {
			continue
		}
		spawn := func(addr uint32, name string) {
			s.pending = append(s.pending, NewTask(name, addr))
		}
		for {
			status, err := Step(t, s.prog, s.glob, spawn)
			switch status {
			case StatusOk:
				continue
			case StatusBlocked:
			case StatusDone:
				t.State = TaskDone
			case StatusFailure:
				t.State = TaskFailed
				t.FailErr = err
				return false, err
			}
			break
		}
	}

	live := s.tasks[:0]
	for _, t := range s.tasks {
		if t.State == TaskRunning {
			live = append(live, t)
		}
	}
	s.tasks = append(live, s.pending...)
	s.pending = nil

	// Wait has already been decremented once this tick (inside Step, the
	// only place a running task's Wait can still be > 0 after being
	// stepped); time only advances for a task that isn't still counting
	// down a wait.
	for _, t := range s.tasks {
		if t.Wait == 0 {
			t.Time++
		}
	}

	return len(s.tasks) > 0, nil
}

// Run ticks the scheduler until no task remains runnable or one fails. A
// failure stops execution immediately and is returned: the rest of the task
// list, and any later tick, never runs.
func (s *Scheduler) Run() error {
	for {
		alive, err := s.Tick()
		if err != nil {
			return err
		}
		if !alive {
			return nil
		}
	}
}

// Tasks exposes the current task list.
func (s *Scheduler) Tasks() []*Task {
	return s.tasks
}
