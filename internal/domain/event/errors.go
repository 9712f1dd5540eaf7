package event

import "errors"

// Event ドメインのエラー定義
var (
	ErrEventNotFound   = errors.New("イベントが見つかりません")
	ErrInvalidEventID  = errors.New("イベントIDの形式が不正です")
	ErrInvalidCapacity = errors.New("座席数は1以上100000以下である必要があります")
)
