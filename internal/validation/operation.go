package validation

import (
	"fmt"
	"regexp"

	"github.com/vkuzmenko/wardsync/internal/models"
)

// FieldNamePattern определяет допустимый формат имени поля
// Только латинские буквы в нижнем регистре, цифры и нижнее подчеркивание,
// первым символом идет буква. Длина: 1-64 символа
var FieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

const (
	// MaxFieldValueLen максимальная длина значения поля
	MaxFieldValueLen = 4096
	// MaxDeltaFields максимальное количество полей в одной дельте
	MaxDeltaFields = 64
)

// ValidateOperation проверяет операцию перед постановкой в очередь передачи.
// Некорректная операция отклоняется локально и в батч не попадает:
// она переносится в карантин, остальной батч не блокируется.
func ValidateOperation(op *models.Operation) error {
	if op == nil {
		return fmt.Errorf("operation cannot be nil")
	}

	if op.RecordID == "" {
		return fmt.Errorf("operation record id cannot be empty")
	}

	if op.NodeID == "" {
		return fmt.Errorf("operation node id cannot be empty")
	}

	if len(op.Clock) == 0 {
		return fmt.Errorf("operation vector clock cannot be empty")
	}

	if len(op.Delta) == 0 && op.NewStatus == nil {
		return fmt.Errorf("operation must carry a field delta or a status change")
	}

	if len(op.Delta) > MaxDeltaFields {
		return fmt.Errorf("delta must not exceed %d fields", MaxDeltaFields)
	}

	for name, fv := range op.Delta {
		if !FieldNamePattern.MatchString(name) {
			return fmt.Errorf("invalid field name %q", name)
		}
		if len(fv.Value) > MaxFieldValueLen {
			return fmt.Errorf("field %q value exceeds %d bytes", name, MaxFieldValueLen)
		}
		if fv.OriginNodeID == "" {
			return fmt.Errorf("field %q has no origin node id", name)
		}
	}

	if op.NewStatus != nil && !op.NewStatus.Known() {
		return fmt.Errorf("unknown status %q", *op.NewStatus)
	}

	return nil
}
