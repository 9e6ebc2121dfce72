package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"github.com/sa99080/pharmacy-hub/internal/events"
	leaveerrors "github.com/sa99080/pharmacy-hub/internal/leave/errors"
	"github.com/sa99080/pharmacy-hub/internal/messaging/kafka"
	"github.com/sa99080/pharmacy-hub/internal/rank"
	"github.com/sa99080/pharmacy-hub/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

const (
	KindAnnual   = "ANNUAL"
	KindHalfDay  = "HALF_DAY"
	KindOverseas = "OVERSEAS"
)

// SelfConsumingKinds feed the self-service balance panel; ManagementKinds
// additionally count overseas days in the roster aggregate. The asymmetry is
// deliberate: top-tier overseas stays off the personal panel but is still
// visible to administration.
var (
	SelfConsumingKinds = []string{KindAnnual, KindHalfDay}
	ManagementKinds    = []string{KindAnnual, KindHalfDay, KindOverseas}
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, employeeID string, req SubmitLeaveRequest) (SubmitLeaveResponse, error)
	Resubmit(ctx context.Context, actorID, id string, req SubmitLeaveRequest) (SubmitLeaveResponse, error)
	Delete(ctx context.Context, actorID, id string) error
	SetStatus(ctx context.Context, actorID, id, status string) (LeaveResponse, error)
	GetOwn(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	GetVisible(ctx context.Context, actorID string) ([]LeaveResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, logger...)
}

func NewServiceWithOutbox(db *sql.DB, repo Repository, outboxRepo kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{db: db, repo: repo, outbox: outboxRepo, logger: l}
}

// Submit records one logical submission as one row per requested day, all
// inside a single transaction. Auto-approved ranks skip the pending step.
func (s *service) Submit(ctx context.Context, employeeID string, req SubmitLeaveRequest) (SubmitLeaveResponse, error) {
	s.logger.Debug("submit leave requested",
		zap.String("employee_id", employeeID),
		zap.String("kind", req.Kind),
		zap.Int("dates", len(req.Dates)),
	)

	dates, err := parseDates(req.Dates)
	if err != nil {
		s.logger.Warn("submit leave validation failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	name, empRank, err := s.employeeInfo(ctx, employeeID)
	if err != nil {
		return SubmitLeaveResponse{}, err
	}
	policy := rank.PolicyFor(rank.Rank(empRank))
	if err := validateKind(req.Kind, policy); err != nil {
		return SubmitLeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}
	defer tx.Rollback()

	batch := s.buildBatch(employeeID, name, req.Kind, dates, policy)

	qtx := s.repo.WithTx(tx)
	if err := qtx.InsertBatch(ctx, batch.rows); err != nil {
		s.logger.Error("submit leave persist failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	if err := s.stageSubmittedEvent(ctx, tx, batch, employeeID, false); err != nil {
		return SubmitLeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave commit failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	s.logger.Info("submit leave success",
		zap.String("batch_id", batch.id.String()),
		zap.String("employee_id", employeeID),
		zap.String("status", batch.status),
		zap.Int("days", len(batch.rows)),
	)

	return batch.response(false), nil
}

// Resubmit replaces an existing request with a fresh batch. The old id is
// invalidated and, for non auto-approved ranks, the new rows re-enter the
// approval queue regardless of the prior status. Both the delete and the
// inserts share one transaction.
func (s *service) Resubmit(ctx context.Context, actorID, id string, req SubmitLeaveRequest) (SubmitLeaveResponse, error) {
	s.logger.Debug("resubmit leave requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
	)

	dates, err := parseDates(req.Dates)
	if err != nil {
		return SubmitLeaveResponse{}, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SubmitLeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return SubmitLeaveResponse{}, err
	}
	if existing.EmployeeID.String() != actorID {
		return SubmitLeaveResponse{}, leaveerrors.ErrNotOwner
	}

	name, empRank, err := s.employeeInfo(ctx, actorID)
	if err != nil {
		return SubmitLeaveResponse{}, err
	}
	policy := rank.PolicyFor(rank.Rank(empRank))
	if err := validateKind(req.Kind, policy); err != nil {
		return SubmitLeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("resubmit leave begin tx failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.DeleteByID(ctx, id); err != nil {
		s.logger.Error("resubmit leave delete failed", zap.String("leave_id", id), zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	batch := s.buildBatch(actorID, name, req.Kind, dates, policy)
	if err := qtx.InsertBatch(ctx, batch.rows); err != nil {
		s.logger.Error("resubmit leave persist failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	if err := s.stageSubmittedEvent(ctx, tx, batch, actorID, true); err != nil {
		return SubmitLeaveResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("resubmit leave commit failed", zap.Error(err))
		return SubmitLeaveResponse{}, err
	}

	s.logger.Info("resubmit leave success",
		zap.String("old_leave_id", id),
		zap.String("batch_id", batch.id.String()),
		zap.String("status", batch.status),
	)

	return batch.response(true), nil
}

// Delete removes a pending request on the owner's self-service path. Decided
// requests cannot be deleted here; an approver rejects instead.
func (s *service) Delete(ctx context.Context, actorID, id string) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return leaveerrors.ErrLeaveNotFound
		}
		return err
	}
	if l.EmployeeID.String() != actorID {
		return leaveerrors.ErrNotOwner
	}
	if l.Status != StatusPending {
		return leaveerrors.ErrDeleteNotPending
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).DeleteByID(ctx, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	s.logger.Info("delete leave success", zap.String("leave_id", id))
	return nil
}

// SetStatus applies an approver decision: approve, reject, or revert back to
// pending. Any current status is a valid starting point; re-decisions race
// under last-write-wins.
func (s *service) SetStatus(ctx context.Context, actorID, id, status string) (LeaveResponse, error) {
	s.logger.Debug("set leave status requested",
		zap.String("leave_id", id),
		zap.String("actor_id", actorID),
		zap.String("target_status", status),
	)

	if status != StatusPending && status != StatusApproved && status != StatusRejected {
		return LeaveResponse{}, leaveerrors.ErrUnknownStatus
	}

	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		return LeaveResponse{}, err
	}

	_, actorRank, err := s.employeeInfo(ctx, actorID)
	if err != nil {
		return LeaveResponse{}, err
	}
	_, ownerRank, err := s.employeeInfo(ctx, l.EmployeeID.String())
	if err != nil {
		return LeaveResponse{}, err
	}
	if !rank.CanApprove(rank.Rank(actorRank), rank.Rank(ownerRank)) {
		s.logger.Warn("set leave status forbidden",
			zap.String("leave_id", id),
			zap.String("actor_rank", actorRank),
			zap.String("owner_rank", ownerRank),
		)
		return LeaveResponse{}, leaveerrors.ErrCannotApproveRank
	}

	var decidedBy *uuid.UUID
	if status != StatusPending {
		actorUUID, err := uuid.Parse(actorID)
		if err != nil {
			return LeaveResponse{}, leaveerrors.ErrEmployeeNotFound
		}
		decidedBy = &actorUUID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("set leave status begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.UpdateStatus(ctx, id, status, decidedBy); err != nil {
		s.logger.Error("set leave status persist failed",
			zap.String("leave_id", id),
			zap.Error(err),
		)
		return LeaveResponse{}, err
	}

	if s.outbox != nil {
		event := events.LeaveDecidedEvent{
			EventType:  "leave_decided",
			RequestID:  contextutil.GetRequestID(ctx),
			LeaveID:    id,
			EmployeeID: l.EmployeeID.String(),
			DecidedBy:  actorID,
			Status:     status,
			OccurredAt: time.Now().UTC(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return LeaveResponse{}, err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     event.RequestID,
			AggregateType: "leave",
			AggregateID:   id,
			EventType:     event.EventType,
			Topic:         events.LeaveDecidedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			s.logger.Error("set leave status outbox persist failed", zap.Error(err))
			return LeaveResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Error("set leave status commit failed", zap.String("leave_id", id), zap.Error(err))
		return LeaveResponse{}, err
	}

	l.Status = status
	l.DecidedBy = decidedBy

	s.logger.Info("set leave status success",
		zap.String("leave_id", id),
		zap.String("status", status),
	)
	return mapToResponse(*l), nil
}

func (s *service) GetOwn(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	leaves, err := s.repo.FindByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(leaves), nil
}

// GetVisible lists every request the actor may decide, most recent first. A
// rank with no approvable ranks sees an empty list; no query is issued with
// an empty IN filter.
func (s *service) GetVisible(ctx context.Context, actorID string) ([]LeaveResponse, error) {
	_, actorRank, err := s.employeeInfo(ctx, actorID)
	if err != nil {
		return nil, err
	}

	approvable := rank.ApprovableRanks(rank.Rank(actorRank))
	if len(approvable) == 0 {
		return []LeaveResponse{}, nil
	}

	ranks := make([]string, len(approvable))
	for i, r := range approvable {
		ranks[i] = string(r)
	}

	ids, err := s.repo.EmployeeIDsByRanks(ctx, ranks)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []LeaveResponse{}, nil
	}

	rows, err := s.repo.FindVisibleByEmployees(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := make([]LeaveResponse, len(rows))
	for i, row := range rows {
		resp[i] = mapVisibleToResponse(row)
	}
	return resp, nil
}

// submissionBatch is one logical multi-date submission before persistence.
type submissionBatch struct {
	id     uuid.UUID
	status string
	rows   []*Leave
	kind   string
	dates  []time.Time
}

func (s *service) buildBatch(employeeID, name, kind string, dates []time.Time, policy rank.Policy) submissionBatch {
	status := StatusPending
	if policy.AutoApproved {
		status = StatusApproved
	}

	batchID := uuid.New()
	rows := make([]*Leave, len(dates))
	for i, d := range dates {
		rows[i] = &Leave{
			ID:         uuid.New(),
			BatchID:    batchID,
			EmployeeID: uuid.MustParse(employeeID),
			Title:      name + " " + kind,
			Kind:       kind,
			StartDate:  d,
			EndDate:    d,
			Status:     status,
		}
	}

	return submissionBatch{id: batchID, status: status, rows: rows, kind: kind, dates: dates}
}

func (b submissionBatch) response(resubmitted bool) SubmitLeaveResponse {
	entries := make([]LeaveResponse, len(b.rows))
	for i, l := range b.rows {
		entries[i] = mapToResponse(*l)
	}
	return SubmitLeaveResponse{
		BatchID:     b.id.String(),
		Status:      b.status,
		Resubmitted: resubmitted,
		Entries:     entries,
	}
}

func (s *service) stageSubmittedEvent(ctx context.Context, tx *sql.Tx, batch submissionBatch, employeeID string, resubmit bool) error {
	if s.outbox == nil {
		return nil
	}

	dates := make([]string, len(batch.dates))
	for i, d := range batch.dates {
		dates[i] = d.Format("2006-01-02")
	}

	event := events.LeaveSubmittedEvent{
		EventType:  "leave_submitted",
		RequestID:  contextutil.GetRequestID(ctx),
		BatchID:    batch.id.String(),
		EmployeeID: employeeID,
		Kind:       batch.kind,
		Dates:      dates,
		Status:     batch.status,
		Resubmit:   resubmit,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     event.RequestID,
		AggregateType: "leave_batch",
		AggregateID:   batch.id.String(),
		EventType:     event.EventType,
		Topic:         events.LeaveSubmittedTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}); err != nil {
		s.logger.Error("stage leave submitted event failed", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) employeeInfo(ctx context.Context, employeeID string) (string, string, error) {
	name, empRank, err := s.repo.EmployeeInfo(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", leaveerrors.ErrEmployeeNotFound
		}
		return "", "", err
	}
	return name, empRank, nil
}

// parseDates validates and sorts the requested days ascending. The input set
// is order-independent and may span discontiguous dates; duplicates within
// or across submissions are accepted as-is.
func parseDates(raw []string) ([]time.Time, error) {
	if len(raw) == 0 {
		return nil, leaveerrors.ErrEmptyDateSet
	}

	dates := make([]time.Time, len(raw))
	for i, v := range raw {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, leaveerrors.ErrInvalidDateFormat
		}
		dates[i] = d
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

func validateKind(kind string, policy rank.Policy) error {
	switch kind {
	case KindAnnual, KindHalfDay:
		return nil
	case KindOverseas:
		if !policy.OverseasAllowed {
			return leaveerrors.ErrOverseasNotAllowed
		}
		return nil
	default:
		return leaveerrors.ErrUnknownKind
	}
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:         l.ID.String(),
		BatchID:    l.BatchID.String(),
		EmployeeID: l.EmployeeID.String(),
		Title:      l.Title,
		Kind:       l.Kind,
		StartDate:  l.StartDate.Format("2006-01-02"),
		EndDate:    l.EndDate.Format("2006-01-02"),
		Status:     l.Status,
		CreatedAt:  l.CreatedAt.Format(time.RFC3339),
	}
	if l.DecidedBy != nil {
		resp.DecidedBy = l.DecidedBy.String()
	}
	return resp
}

func mapVisibleToResponse(row VisibleLeave) LeaveResponse {
	resp := LeaveResponse{
		ID:           row.ID.String(),
		BatchID:      row.BatchID.String(),
		EmployeeID:   row.EmployeeID.String(),
		EmployeeName: row.EmployeeName,
		EmployeeRank: row.EmployeeRank,
		Title:        row.Title,
		Kind:         row.Kind,
		StartDate:    row.StartDate.Format("2006-01-02"),
		EndDate:      row.EndDate.Format("2006-01-02"),
		Status:       row.Status,
		CreatedAt:    row.CreatedAt.Format(time.RFC3339),
	}
	if row.DecidedBy != nil {
		resp.DecidedBy = row.DecidedBy.String()
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
