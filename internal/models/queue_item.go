package models

// QueueStatus represents where a patient is in the visit flow.
type QueueStatus string

const (
	QueueWaiting    QueueStatus = "waiting"
	QueueInProgress QueueStatus = "in-progress"
	QueueHold       QueueStatus = "hold"
	QueueCompleted  QueueStatus = "completed"
)

// ValidQueueStatus reports whether s is one of the known queue statuses.
func ValidQueueStatus(s QueueStatus) bool {
	switch s {
	case QueueWaiting, QueueInProgress, QueueHold, QueueCompleted:
		return true
	}
	return false
}

// QueueItem represents one patient's position in a clinician's queue.
// PatientName is always derived from LastName + " " + FirstName and is never
// set independently.
type QueueItem struct {
	BaseModel
	DoctorID     string      `gorm:"size:36;index" json:"-"`
	TicketNumber int         `gorm:"not null" json:"ticketNumber"`
	FirstName    string      `gorm:"size:100;not null" json:"firstName"`
	LastName     string      `gorm:"size:100;not null" json:"lastName"`
	PatientName  string      `gorm:"size:201" json:"patientName"`
	Age          string      `gorm:"size:10" json:"age"`
	Address      string      `gorm:"size:255" json:"address"`
	Complaints   string      `gorm:"type:text" json:"complaints"`
	ArrivalTime  string      `gorm:"size:10" json:"arrivalTime"`
	Status       QueueStatus `gorm:"size:20;default:'waiting'" json:"status"`
}

// DeriveName recomputes PatientName from the current name fields.
func (q *QueueItem) DeriveName() {
	q.PatientName = q.LastName + " " + q.FirstName
}

// QueueIntake carries the fields a caller submits when adding a patient.
type QueueIntake struct {
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Age         string `json:"age" binding:"required"`
	Address     string `json:"address"`
	Complaints  string `json:"complaints"`
	ArrivalTime string `json:"arrivalTime"`
}

// QueueItemUpdate is a partial update of a queue item. Nil fields are left
// unchanged. Status, when present, is applied by the engine's transition
// rules rather than as a plain field write.
type QueueItemUpdate struct {
	Status     *QueueStatus `json:"status,omitempty"`
	FirstName  *string      `json:"firstName,omitempty"`
	LastName   *string      `json:"lastName,omitempty"`
	Age        *string      `json:"age,omitempty"`
	Address    *string      `json:"address,omitempty"`
	Complaints *string      `json:"complaints,omitempty"`
}

// ApplyDetails writes the non-status fields of u onto q and re-derives the
// display name. The status field is deliberately ignored here.
func (u QueueItemUpdate) ApplyDetails(q *QueueItem) {
	if u.FirstName != nil {
		q.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		q.LastName = *u.LastName
	}
	if u.Age != nil {
		q.Age = *u.Age
	}
	if u.Address != nil {
		q.Address = *u.Address
	}
	if u.Complaints != nil {
		q.Complaints = *u.Complaints
	}
	q.DeriveName()
}
