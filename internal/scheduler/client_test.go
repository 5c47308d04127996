package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type testSchedulerConfig struct {
	url   string
	queue string
}

func (c testSchedulerConfig) GetRedisURL() string      { return c.url }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c testSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected an error without a redis url")
	}
}

func TestScheduleAppointmentReminderEnqueuesDelayedTask(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{url: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	apptID := uuid.New()
	caseID := uuid.New().String()
	runAt := time.Now().Add(2 * time.Hour)

	err = client.ScheduleAppointmentReminder(context.Background(), AppointmentReminderPayload{
		AppointmentID: apptID.String(),
		CaseID:        &caseID,
	}, runAt)
	if err != nil {
		t.Fatalf("ScheduleAppointmentReminder failed: %v", err)
	}

	insp := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer insp.Close()

	tasks, err := insp.ListScheduledTasks("default")
	if err != nil {
		t.Fatalf("ListScheduledTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 scheduled task, got %d", len(tasks))
	}
	if tasks[0].Type != TaskAppointmentReminder {
		t.Fatalf("unexpected task type %q", tasks[0].Type)
	}

	payload, err := ParseAppointmentReminderPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("payload did not round-trip: %v", err)
	}
	if payload.AppointmentID != apptID.String() {
		t.Fatalf("unexpected appointment id %q", payload.AppointmentID)
	}
	if payload.CaseID == nil || *payload.CaseID != caseID {
		t.Fatal("case id missing from payload")
	}
}

func TestScheduleAppointmentReminderUsesConfiguredQueue(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewClient(testSchedulerConfig{url: "redis://" + mr.Addr(), queue: "caseflow"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	defer client.Close()

	err = client.ScheduleAppointmentReminder(context.Background(), AppointmentReminderPayload{
		AppointmentID: uuid.New().String(),
	}, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ScheduleAppointmentReminder failed: %v", err)
	}

	insp := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer insp.Close()

	tasks, err := insp.ListScheduledTasks("caseflow")
	if err != nil {
		t.Fatalf("ListScheduledTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task on the caseflow queue, got %d", len(tasks))
	}
}
