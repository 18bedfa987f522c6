package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFile はアップロードが読めない、または data URI の形をしていない場合のエラーです。
	ErrInvalidFile = errors.New("invalid image file")
	// ErrInvalidInput は空のプロンプトなど入力値が不正な場合のエラーです。
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidCount は生成枚数が範囲外の場合のエラーです。ErrInvalidInput としても判定できます。
	ErrInvalidCount = fmt.Errorf("%w: number of images must be between %d and %d", ErrInvalidInput, MinImageCount, MaxImageCount)
	// ErrNoImageReturned は通信は成功したが画像が含まれていなかった場合のエラーです。
	ErrNoImageReturned = errors.New("no image returned")
)

const unknownErrorMessage = "An unknown error occurred."

// RemoteOperationError はリモート API 呼び出しの失敗を包みます。
// Message はユーザーに表示する文言で、元のメッセージが無い場合はフォールバックが入ります。
type RemoteOperationError struct {
	Op      string
	Message string
	Err     error
}

// NewRemoteOperationError は err のメッセージを優先し、空であれば fallback を使います。
func NewRemoteOperationError(op string, err error, fallback string) *RemoteOperationError {
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &RemoteOperationError{Op: op, Message: msg, Err: err}
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RemoteOperationError) Unwrap() error { return e.Err }

// NoImageError は ErrNoImageReturned に利用者向けの文言を添えます。
type NoImageError struct {
	Message string
	Reason  string
}

func (e *NoImageError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (finish reason: %s)", e.Message, e.Reason)
	}
	return e.Message
}

func (e *NoImageError) Is(target error) bool { return target == ErrNoImageReturned }

// UserMessage は UI に表示する 1 件のメッセージを返します。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var remote *RemoteOperationError
	if errors.As(err, &remote) && remote.Message != "" {
		return remote.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return unknownErrorMessage
}
