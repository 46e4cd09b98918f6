package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crewfield/scheduling-service/internal/models"
	"github.com/crewfield/scheduling-service/internal/utils"
)

// In-memory repository fakes. They mirror the SQL layer's contracts:
// nil for not-found, utils.ErrRowVersionConflict on a stale version,
// and the same ordering guarantees the queries promise.

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[uuid.UUID]*models.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*models.Job)}
}

func (r *fakeJobRepo) Create(_ context.Context, job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// The SQL layer stamps the model on insert; mirror that.
	job.RowVersion = 1
	job.CreatedAt = time.Now().UTC()
	job.UpdatedAt = job.CreatedAt
	cp := *job
	r.jobs[job.ID] = &cp
	return nil
}

func (r *fakeJobRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[id]
	if !ok {
		return nil, nil
	}
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) ListByIDs(_ context.Context, ids []uuid.UUID) ([]*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Job
	for _, id := range ids {
		if j, ok := r.jobs[id]; ok {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeJobRepo) ListByStatus(_ context.Context, status models.JobStatusType) ([]*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Job
	for _, j := range r.jobs {
		if j.Status == status {
			cp := *j
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.Before(out[k].CreatedAt) })
	return out, nil
}

func (r *fakeJobRepo) UpdateScheduleAtomic(
	_ context.Context,
	jobID uuid.UUID,
	expectedVersion int64,
	newDate time.Time,
	newStart time.Time,
	newEnd *time.Time,
	newDuration *int,
) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if j.RowVersion != expectedVersion {
		return j, utils.ErrRowVersionConflict
	}
	j.StartDate = newDate
	j.StartTime = newStart
	j.EndTime = newEnd
	j.DurationMinutes = newDuration
	j.RowVersion++
	j.UpdatedAt = time.Now().UTC()
	cp := *j
	return &cp, nil
}

func (r *fakeJobRepo) UpdateStatusAtomic(
	_ context.Context,
	jobID uuid.UUID,
	newStatus models.JobStatusType,
	expectedVersion int64,
) (*models.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[jobID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if j.RowVersion != expectedVersion {
		return j, utils.ErrRowVersionConflict
	}
	j.Status = newStatus
	j.RowVersion++
	j.UpdatedAt = time.Now().UTC()
	cp := *j
	return &cp, nil
}

type fakeOccurrenceRepo struct {
	mu   sync.Mutex
	occs map[uuid.UUID]*models.JobOccurrence
	seq  int

	// Artificial read latency, to widen check-then-act races.
	listDelay time.Duration
}

func newFakeOccurrenceRepo() *fakeOccurrenceRepo {
	return &fakeOccurrenceRepo{occs: make(map[uuid.UUID]*models.JobOccurrence)}
}

func (r *fakeOccurrenceRepo) insert(occ *models.JobOccurrence) {
	occ.RowVersion = 1
	r.seq++
	occ.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	occ.UpdatedAt = occ.CreatedAt
	cp := *occ
	r.occs[occ.ID] = &cp
}

func (r *fakeOccurrenceRepo) Create(_ context.Context, occ *models.JobOccurrence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insert(occ)
	return nil
}

func (r *fakeOccurrenceRepo) CreateIfNotExists(_ context.Context, occ *models.JobOccurrence) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.occs {
		if existing.JobID == occ.JobID && sameDate(existing.ServiceDate, occ.ServiceDate) {
			return nil
		}
	}
	r.insert(occ)
	return nil
}

func (r *fakeOccurrenceRepo) GetByID(_ context.Context, id uuid.UUID) (*models.JobOccurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.occs[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func matchStatus(o *models.JobOccurrence, statuses []models.OccurrenceStatusType) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, st := range statuses {
		if o.Status == st {
			return true
		}
	}
	return false
}

func sortOccs(out []*models.JobOccurrence) {
	sort.Slice(out, func(i, k int) bool {
		a, b := out[i], out[k]
		if am, bm := minuteOfDay(a.StartTime), minuteOfDay(b.StartTime); am != bm {
			return am < bm
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
}

func (r *fakeOccurrenceRepo) ListForEmployeeDate(
	_ context.Context,
	employeeID uuid.UUID,
	date time.Time,
	statuses []models.OccurrenceStatusType,
) ([]*models.JobOccurrence, error) {
	if r.listDelay > 0 {
		time.Sleep(r.listDelay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.JobOccurrence
	for _, o := range r.occs {
		if o.EmployeeID == employeeID && sameDate(o.ServiceDate, date) && matchStatus(o, statuses) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sortOccs(out)
	return out, nil
}

func (r *fakeOccurrenceRepo) ListForDate(
	_ context.Context,
	date time.Time,
	statuses []models.OccurrenceStatusType,
) ([]*models.JobOccurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.JobOccurrence
	for _, o := range r.occs {
		if sameDate(o.ServiceDate, date) && matchStatus(o, statuses) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sortOccs(out)
	return out, nil
}

func (r *fakeOccurrenceRepo) ListByJobID(_ context.Context, jobID uuid.UUID) ([]*models.JobOccurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.JobOccurrence
	for _, o := range r.occs {
		if o.JobID == jobID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ServiceDate.Before(out[k].ServiceDate) })
	return out, nil
}

func (r *fakeOccurrenceRepo) RescheduleAtomic(
	_ context.Context,
	occurrenceID uuid.UUID,
	expectedVersion int64,
	newDate time.Time,
	newStart time.Time,
	newEnd *time.Time,
) (*models.JobOccurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.occs[occurrenceID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if o.RowVersion != expectedVersion {
		return o, utils.ErrRowVersionConflict
	}
	if o.Status != models.OccurrenceStatusBooked {
		return o, utils.ErrWrongStatus
	}
	o.ServiceDate = newDate
	o.StartTime = newStart
	o.EndTime = newEnd
	o.RowVersion++
	o.UpdatedAt = time.Now().UTC()
	cp := *o
	return &cp, nil
}

func (r *fakeOccurrenceRepo) UpdateStatusAtomic(
	_ context.Context,
	occurrenceID uuid.UUID,
	newStatus models.OccurrenceStatusType,
	expectedVersion int64,
) (*models.JobOccurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.occs[occurrenceID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if o.RowVersion != expectedVersion {
		return o, utils.ErrRowVersionConflict
	}
	o.Status = newStatus
	o.RowVersion++
	cp := *o
	return &cp, nil
}

func (r *fakeOccurrenceRepo) CancelByJobID(_ context.Context, jobID uuid.UUID, onOrAfter time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.occs {
		if o.JobID == jobID && o.Status == models.OccurrenceStatusBooked && !o.ServiceDate.Before(onOrAfter) {
			o.Status = models.OccurrenceStatusCanceled
			o.RowVersion++
		}
	}
	return nil
}

type fakeEmployeeRepo struct {
	mu   sync.Mutex
	emps map[uuid.UUID]*models.Employee
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{emps: make(map[uuid.UUID]*models.Employee)}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, emp *models.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	emp.RowVersion = 1
	emp.CreatedAt = time.Now().UTC()
	emp.UpdatedAt = emp.CreatedAt
	cp := *emp
	r.emps[emp.ID] = &cp
	return nil
}

func (r *fakeEmployeeRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.emps[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *fakeEmployeeRepo) ListAll(_ context.Context) ([]*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Employee
	for _, e := range r.emps {
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out, nil
}

func (r *fakeEmployeeRepo) UpdateStatusAtomic(
	_ context.Context,
	id uuid.UUID,
	newStatus models.EmployeeStatusType,
	expectedVersion int64,
) (*models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.emps[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if e.RowVersion != expectedVersion {
		return e, utils.ErrRowVersionConflict
	}
	e.Status = newStatus
	e.RowVersion++
	cp := *e
	return &cp, nil
}

type fakeOverrideRepo struct {
	mu  sync.Mutex
	ovs map[uuid.UUID]*models.RadiusOverride
	seq int
}

func newFakeOverrideRepo() *fakeOverrideRepo {
	return &fakeOverrideRepo{ovs: make(map[uuid.UUID]*models.RadiusOverride)}
}

func (r *fakeOverrideRepo) Create(_ context.Context, ov *models.RadiusOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ov.RowVersion = 1
	r.seq++
	ov.CreatedAt = time.Unix(int64(r.seq), 0).UTC()
	ov.UpdatedAt = ov.CreatedAt
	cp := *ov
	r.ovs[ov.ID] = &cp
	return nil
}

func (r *fakeOverrideRepo) GetByID(_ context.Context, id uuid.UUID) (*models.RadiusOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.ovs[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOverrideRepo) ListByEmployeeID(_ context.Context, employeeID uuid.UUID) ([]*models.RadiusOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RadiusOverride
	for _, o := range r.ovs {
		if o.EmployeeID == employeeID {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (r *fakeOverrideRepo) ListEffectiveAt(
	_ context.Context,
	employeeID uuid.UUID,
	at time.Time,
) ([]*models.RadiusOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RadiusOverride
	for _, o := range r.ovs {
		if o.EmployeeID == employeeID && o.EffectiveAt(at) {
			cp := *o
			out = append(out, &cp)
		}
	}
	// Newest creation first, the tie-break order the resolver expects.
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	return out, nil
}

func (r *fakeOverrideRepo) DeactivateAtomic(
	_ context.Context,
	id uuid.UUID,
	expectedVersion int64,
) (*models.RadiusOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.ovs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	if o.RowVersion != expectedVersion {
		return o, utils.ErrRowVersionConflict
	}
	o.IsActive = false
	o.RowVersion++
	cp := *o
	return &cp, nil
}
