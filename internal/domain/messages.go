package domain

import "errors"

// UserMessage returns the text shown privately to the acting user for a
// validation error. It returns "" for errors that are not validation errors.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionCancelled):
		return "❌ 취소된 모집입니다."
	case errors.Is(err, ErrSessionClosed):
		return "🔒 마감된 모집입니다."
	case errors.Is(err, ErrHostCannotLeave):
		return "⚠️ 모집자는 나갈 수 없습니다."
	case errors.Is(err, ErrCapacityReached):
		return "⚠️ 모집 인원이 가득 찼습니다."
	case errors.Is(err, ErrNotHost):
		return "⚠️ 모집자만 사용할 수 있습니다."
	case errors.Is(err, ErrInvalidCapacity):
		return "⚠️ 올바르지 않은 인원입니다."
	case errors.Is(err, ErrExtraTextTooLong):
		return "⚠️ 설명은 200자 이하로 입력해주세요."
	case errors.Is(err, ErrExtraTextAlreadySet):
		return "⚠️ 설명은 이미 등록되었습니다."
	default:
		return ""
	}
}

// IsValidation reports whether err belongs to the validation taxonomy.
func IsValidation(err error) bool {
	return UserMessage(err) != ""
}
