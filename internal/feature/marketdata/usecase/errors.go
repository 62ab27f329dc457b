package usecase

import (
	"errors"
	"fmt"
)

var (
	// ErrDataUnavailable は銘柄のデータを取得できなかったことを示します。
	// ソース障害、タイムアウト、不正なレスポンスはすべてこのエラーをラップします。
	ErrDataUnavailable = errors.New("market data unavailable")
	// ErrNoPrice はソースが有効な株価を返さなかったことを示します。
	ErrNoPrice = fmt.Errorf("%w: no price", ErrDataUnavailable)
)
