package util

import (
	"errors"
	"strconv"
)

// ParseUint 解析路径参数中的数字ID，0 也视为非法
func ParseUint(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id: " + s)
	}
	return uint(id), nil
}
