// internal/workers/ai-insights/ask-insight/job.go
package askinsight

import (
	"context"
	"encoding/json"
	"fmt"

	apperrors "crm-insights/internal/common/errors"
	"crm-insights/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// Handle runs an ask for a workflow job. The job completes with the answer
// payload or throws a BPMN error carrying the failure code.
func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	input, err := jobInput(job)
	if err != nil {
		h.failJob(context.Background(), client, job, err)
		return
	}

	ctx := context.Background()
	if h.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.JobTimeout)
		defer cancel()
	}

	answer, err := h.Execute(ctx, input)
	if err != nil {
		// the job context may have expired; reporting still has to reach the broker
		h.failJob(context.Background(), client, job, err)
		return
	}

	h.completeJob(context.Background(), client, job, answer)
}

// jobInput maps job variables onto an ask. The question stays untyped so
// validation treats it exactly like a request body.
func jobInput(job entities.Job) (*Input, error) {
	var vars jobVariables
	if err := json.Unmarshal([]byte(job.Variables), &vars); err != nil {
		return nil, apperrors.NewInvalidQuestionError(fmt.Sprintf("parse job variables: %v", err))
	}

	payload := map[string]interface{}{}
	if vars.Question != nil {
		payload["question"] = vars.Question
	}

	return &Input{
		Caller:    vars.Caller,
		Payload:   payload,
		RequestID: fmt.Sprintf("job-%d", job.Key),
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, answer *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(answer)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("Failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
}

func (h *Handler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := apperrors.Normalize(err)
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
	h.errorHandler.HandleJobError(ctx, client, job, stdErr)
}
