package errors

import "errors"

// ErrCycleInProgress 报名周期互斥：已有周期在执行中
var ErrCycleInProgress = errors.New("已有报名周期正在执行，请稍后再试")
