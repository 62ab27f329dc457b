// Package domain は履歴フィーチャーのドメインエラーを定義します。
package domain

import "errors"

var (
	// ErrSnapshotNotFound は指定日のスナップショットが存在しないことを示します。
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrMalformedRecord は保存済みレコードを解釈できないことを示します。
	ErrMalformedRecord = errors.New("malformed snapshot record")
	// ErrPersistence はスナップショットの書き込みに失敗したことを示します。
	ErrPersistence = errors.New("snapshot persistence failed")
)
