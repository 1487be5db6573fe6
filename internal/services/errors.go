package services

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNoAccess     Kind = "no_access"
)

const (
	MsgInvalidPayload       = "Dữ liệu không hợp lệ"
	MsgInternal             = "Lỗi máy chủ nội bộ"
	MsgOrderExists          = "Thứ tự đã tồn tại"
	MsgTierCodeExists       = "Mã tier đã tồn tại"
	MsgWordExists           = "Từ vựng đã tồn tại trong level này"
	MsgEmailExists          = "Email đã được sử dụng"
	MsgDuplicate            = "Dữ liệu đã tồn tại"
	MsgTierNotFound         = "Không tìm thấy tier"
	MsgLevelNotFound        = "Không tìm thấy level"
	MsgVocabularyNotFound   = "Không tìm thấy từ vựng"
	MsgExerciseNotFound     = "Không tìm thấy bài tập"
	MsgAccountNotFound      = "Không tìm thấy tài khoản"
	MsgTierHasLevels        = "Không thể xóa tier vì vẫn còn level"
	MsgLevelLocked          = "Level chưa được mở khóa"
	MsgNoAccess             = "Bạn không có quyền truy cập"
	MsgInvalidCredentials   = "Email hoặc mật khẩu không đúng"
	MsgUnauthenticated      = "Token không hợp lệ hoặc đã hết hạn"
	MsgTokenExpired         = "Token đã hết hạn"
	MsgForbidden            = "Không có quyền thực hiện thao tác này"
	MsgInvalidID            = "ID không hợp lệ"
	MsgInvalidTierCode      = "Mã tier phải là một trong A1, A2, B1, B2, C1, C2"
	MsgInvalidOrderIndex    = "Thứ tự phải là số nguyên dương"
	MsgInvalidExerciseType  = "Loại bài tập không hợp lệ"
	MsgInvalidContent       = "Nội dung bài tập phải là một đối tượng JSON"
	MsgInvalidDifficulty    = "Độ khó phải từ 1 đến 5"
	MsgInvalidScore         = "Điểm phải từ 0 đến 100"
	MsgUnlockSelf           = "Level không thể là điều kiện mở khóa của chính nó"
	MsgUnlockUnknown        = "Level điều kiện không tồn tại"
	MsgUnlockCycle          = "Điều kiện mở khóa tạo thành vòng lặp"
	MsgRequired             = "Trường này là bắt buộc"
	MsgRegistrationRejected = "Không thể tạo tài khoản"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ServiceError struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []FieldError
}

func (e ServiceError) Error() string {
	return e.Message
}

func ErrValidation(msg string, fields ...FieldError) error {
	return ServiceError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg, Fields: fields}
}

func ErrBadRequest(msg string) error {
	return ServiceError{Kind: KindValidation, Status: http.StatusBadRequest, Message: msg}
}

func ErrNotFound(msg string) error {
	return ServiceError{Kind: KindNotFound, Status: http.StatusNotFound, Message: msg}
}

func ErrConflict(msg string) error {
	return ServiceError{Kind: KindConflict, Status: http.StatusBadRequest, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return ServiceError{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: msg}
}

func ErrForbidden(msg string) error {
	return ServiceError{Kind: KindForbidden, Status: http.StatusForbidden, Message: msg}
}

func ErrNoAccess() error {
	return ServiceError{Kind: KindNoAccess, Status: http.StatusForbidden, Message: MsgNoAccess}
}

func AsServiceError(err error) (ServiceError, bool) {
	var serr ServiceError
	if errors.As(err, &serr) {
		return serr, true
	}
	return ServiceError{}, false
}

func IsKind(err error, kind Kind) bool {
	serr, ok := AsServiceError(err)
	return ok && serr.Kind == kind
}

func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

type DuplicateError struct {
	Constraint string
	Err        error
}

func (e *DuplicateError) Error() string {
	return "duplicate value violates " + e.Constraint
}

func (e *DuplicateError) Unwrap() error { return e.Err }

type ReferencedError struct {
	Constraint string
	Err        error
}

func (e *ReferencedError) Error() string {
	return "row still referenced by " + e.Constraint
}

func (e *ReferencedError) Unwrap() error { return e.Err }

var duplicateMessages = map[string]string{
	"uq_tiers_name":                   MsgTierCodeExists,
	"uq_tiers_order":                  MsgOrderExists,
	"uq_levels_tier_order":            MsgOrderExists,
	"uq_vocabularies_level_order":     MsgOrderExists,
	"uq_vocabularies_level_word":      MsgWordExists,
	"uq_exercises_level_order_active": MsgOrderExists,
	"uq_admin_users_email":            MsgEmailExists,
	"uq_admin_users_auth_user":        MsgEmailExists,
	"uq_users_email":                  MsgEmailExists,
	"uq_users_auth_user":              MsgEmailExists,
}

// conflictFromStore turns a store-level unique violation into the conflict kind
// with the same message the pre-write check would have produced.
func conflictFromStore(err error) error {
	var dup *DuplicateError
	if errors.As(err, &dup) {
		if msg, ok := duplicateMessages[dup.Constraint]; ok {
			return ErrConflict(msg)
		}
		return ErrConflict(MsgDuplicate)
	}
	return err
}

func isReferenced(err error) bool {
	var ref *ReferencedError
	return errors.As(err, &ref)
}
