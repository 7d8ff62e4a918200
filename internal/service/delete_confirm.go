package service

// SwipeDeleteThreshold 是向右滑动触发删除所需的最小位移（像素）。
const SwipeDeleteThreshold = 120.0

// RequiresDeleteConfirmation 删除必须先经过确认，未确认时应拒绝并提示。
func RequiresDeleteConfirmation(confirmed bool) bool {
	return !confirmed
}

// SwipeTriggersDelete 判断一次水平滑动是否足以触发删除确认，只认向右滑动。
func SwipeTriggersDelete(dx float64) bool {
	return dx > SwipeDeleteThreshold
}
