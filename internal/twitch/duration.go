package twitch

// ParseDuration converts a compact "1h2m3s" duration into seconds. Digits
// accumulate until a unit letter flushes them; any other character discards
// the pending digits.
func ParseDuration(value string) int64 {
	var total, number int64
	for _, r := range value {
		if r >= '0' && r <= '9' {
			number = number*10 + int64(r-'0')
			continue
		}
		switch r {
		case 'h':
			total += number * 3600
		case 'm':
			total += number * 60
		case 's':
			total += number
		}
		number = 0
	}
	return total
}
