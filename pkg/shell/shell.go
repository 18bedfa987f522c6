package shell

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shouni/gemini-image-studio/pkg/domain"
)

// ErrBusy は処理中に再度送信された場合のエラーです。UI 側で送信ボタンを無効化するための判定に使います。
var ErrBusy = errors.New("an operation is already in progress")

// Operation は Run が実行するリモート操作です。
type Operation func(ctx context.Context) (domain.ResultSet, error)

// Shell は現在のモードと、そのモードの操作状態を保持するステートマシンです。
// 結果はチケットで照合し、モード切替後に届いた古い結果は捨てます。
type Shell struct {
	mu     sync.Mutex
	mode   Mode
	state  State
	source *domain.ImagePayload
	refs   []domain.ImagePayload
	now    func() time.Time
}

// New は mode を選択した Idle 状態の Shell を作ります。
func New(mode Mode) *Shell {
	return &Shell{mode: mode, state: Idle{}, now: time.Now}
}

// Snapshot は現在の状態を返します。
func (s *Shell) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Mode: s.mode, State: s.state, Source: s.source, References: slices.Clone(s.refs)}
}

// SwitchMode は別のモードへ切り替えて Idle に戻します。実行中のリクエストは取り消しません。
// 同じモードを指定した場合は何もせず false を返します。
func (s *Shell) SwitchMode(mode Mode) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == mode {
		return false
	}
	s.switchLocked(mode)
	return true
}

func (s *Shell) switchLocked(mode Mode) {
	if busy, ok := s.state.(Busy); ok {
		slog.Info("処理中のリクエストを切り離しました", "mode", string(s.mode), "ticket", busy.Ticket.String())
	}
	s.mode = mode
	s.state = Idle{}
	s.source = nil
	s.refs = nil
}

// Submit は mode を Busy にしてチケットを発行します。前回の結果とエラーは消えます。
func (s *Shell) Submit(mode Mode) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prepareLocked(mode); err != nil {
		return uuid.Nil, err
	}

	ticket := uuid.New()
	s.state = Busy{Ticket: ticket, Since: s.now()}
	return ticket, nil
}

// Refuse は入力不備をリモート呼び出しなしで Failed として表示します。
func (s *Shell) Refuse(mode Mode, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prepareLocked(mode); err != nil {
		return err
	}
	s.state = Failed{Message: message}
	return nil
}

// SetSource は編集モードの元画像を差し替え、前回の結果を消します。
func (s *Shell) SetSource(p domain.ImagePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prepareLocked(ModeEdit); err != nil {
		return err
	}
	s.source = &p
	s.state = Idle{}
	return nil
}

// AddReferences は生成モードの参照画像を末尾に追加します。表示中の結果はそのままです。
func (s *Shell) AddReferences(ps ...domain.ImagePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prepareLocked(ModeGenerate); err != nil {
		return err
	}
	s.refs = append(s.refs, ps...)
	return nil
}

// RemoveReference は index (0 始まり) の参照画像を取り除きます。
func (s *Shell) RemoveReference(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.prepareLocked(ModeGenerate); err != nil {
		return err
	}
	if index < 0 || index >= len(s.refs) {
		return fmt.Errorf("%w: reference %d does not exist", domain.ErrInvalidInput, index)
	}
	s.refs = slices.Delete(s.refs, index, index+1)
	return nil
}

func (s *Shell) prepareLocked(mode Mode) error {
	if s.mode != mode {
		s.switchLocked(mode)
		return nil
	}
	if _, busy := s.state.(Busy); busy {
		return ErrBusy
	}
	return nil
}

// Resolve は ticket が現在の Busy と一致する場合のみ Succeeded にします。
func (s *Shell) Resolve(ticket uuid.UUID, results domain.ResultSet) bool {
	return s.settle(ticket, domain.Success{Results: results})
}

// Reject は ticket が現在の Busy と一致する場合のみ Failed にします。
func (s *Shell) Reject(ticket uuid.UUID, err error) bool {
	return s.settle(ticket, domain.OutcomeOf(nil, err))
}

func (s *Shell) settle(ticket uuid.UUID, outcome domain.Outcome) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	busy, ok := s.state.(Busy)
	if !ok || busy.Ticket != ticket {
		slog.Debug("古いチケットの結果を破棄しました", "ticket", ticket.String())
		return false
	}

	switch o := outcome.(type) {
	case domain.Success:
		s.state = Succeeded{Results: o.Results, At: s.now()}
	case domain.Failure:
		s.state = Failed{Message: o.Message}
	}
	return true
}

// Run は Submit した上で op をバックグラウンドで実行し、結果を反映します。
// op に渡す context は呼び出し元のキャンセルから切り離されます。
// 返すチャネルは結果の反映 (または破棄) が終わると閉じられます。
func (s *Shell) Run(ctx context.Context, mode Mode, op Operation) (uuid.UUID, <-chan struct{}, error) {
	ticket, err := s.Submit(mode)
	if err != nil {
		return uuid.Nil, nil, err
	}

	done := make(chan struct{})
	opCtx := context.WithoutCancel(ctx)
	go func() {
		defer close(done)
		results, err := op(opCtx)
		if err != nil {
			s.Reject(ticket, err)
			return
		}
		s.Resolve(ticket, results)
	}()
	return ticket, done, nil
}
