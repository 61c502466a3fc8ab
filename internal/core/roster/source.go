package roster

import "context"

// BaseSource は不変の基底データセットを読み出します。
type BaseSource interface {
	Load(ctx context.Context) ([]Record, error)
}

// OverlaySource は可変のオーバーレイを読み書きします。
// Save は常に全件置き換えで、追記はしません。
type OverlaySource interface {
	Load(ctx context.Context) ([]OverlayEntry, error)
	Save(ctx context.Context, entries []OverlayEntry) error
}

// WriteLocker はプロセスをまたいだ書き込みの直列化をサポートするオーバーレイが実装します。
type WriteLocker interface {
	AcquireWriteLock(ctx context.Context) error
}
