package shell

import (
	"time"

	"github.com/google/uuid"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// Mode は UI のタブです。
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
)

// ParseMode は URL パスなどから Mode を取り出します。
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeGenerate, ModeEdit:
		return Mode(s), true
	}
	return "", false
}

// Status は State の種別です。
type Status int

const (
	StatusIdle Status = iota
	StatusBusy
	StatusSucceeded
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusBusy:
		return "busy"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// State は Idle / Busy / Succeeded / Failed のいずれか 1 つです。
// 結果とエラーが同時に存在することはありません。
type State interface {
	Status() Status
}

type Idle struct{}

type Busy struct {
	Ticket uuid.UUID
	Since  time.Time
}

type Succeeded struct {
	Results domain.ResultSet
	At      time.Time
}

type Failed struct {
	Message string
}

func (Idle) Status() Status      { return StatusIdle }
func (Busy) Status() Status      { return StatusBusy }
func (Succeeded) Status() Status { return StatusSucceeded }
func (Failed) Status() Status    { return StatusFailed }

// Snapshot はある時点の UI 状態のコピーです。
type Snapshot struct {
	Mode   Mode
	State  State
	Source *domain.ImagePayload
	// References は生成モードで保持している参照画像です。
	References []domain.ImagePayload
}
