package checkpointer

import (
	"path/filepath"
	"strconv"
	"time"
)

// TimestampLayout formats times as year_month_day_hour_minute_second
const TimestampLayout = "2006_01_02_15_04_05"

// Timestamp returns t formatted with TimestampLayout
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// FileTimer returns a function which names files in dir by the local
// time at which FileTimer was called, e.g. dir/2021_08_18_13_04_55.ckpt
func FileTimer(dir, extension string) func() string {
	name := filepath.Join(dir, Timestamp(time.Now()))
	return func() string {
		return name + extension
	}
}

// FilenameEnumerator returns a function which names files
// name_<i>.extension, where i counts up from start+1 on each call
func FilenameEnumerator(start int, name, extension string) func() string {
	i := start
	return func() string {
		i++
		return name + "_" + strconv.Itoa(i) + extension
	}
}
