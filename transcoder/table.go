package transcoder

// UTF-8 validation DFA (Hoehrmann). States are pre-multiplied by the
// number of byte classes so a transition is transitions[state+class].
//
//	stateAccept   0   no partial sequence
//	stateReject  12   terminal, malformed input
//	24           one continuation byte expected
//	36           two continuation bytes expected
//	48           after E0: next byte must be A0..BF
//	60           after ED: next byte must be 80..9F
//	72           after F0: next byte must be 90..BF
//	84           after F1..F3: three continuation bytes expected
//	96           after F4: next byte must be 80..8F
const (
	stateAccept uint8 = 0
	stateReject uint8 = 12

	numClasses = 12
)

// byteClass maps every byte to its character class.
var byteClass = [256]uint8{
	// 00..7F ASCII
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 80..8F continuation
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1,
	// 90..9F continuation
	9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9,
	// A0..BF continuation
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7,
	// C0..C1 overlong, C2..DF two-byte lead
	8, 8, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
	// E0, E1..EC, ED, EE..EF three-byte lead
	10, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 4, 3, 3,
	// F0, F1..F3, F4 four-byte lead, F5..FF invalid
	11, 6, 6, 6, 5, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
}

// transitions is indexed by state+class.
var transitions = [9 * numClasses]uint8{
	0, 12, 24, 36, 60, 96, 84, 12, 12, 12, 48, 72, // accept
	12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, // reject
	12, 0, 12, 12, 12, 12, 12, 0, 12, 0, 12, 12, // 24
	12, 24, 12, 12, 12, 12, 12, 24, 12, 24, 12, 12, // 36
	12, 12, 12, 12, 12, 12, 12, 24, 12, 12, 12, 12, // 48
	12, 24, 12, 12, 12, 12, 12, 12, 12, 24, 12, 12, // 60
	12, 12, 12, 12, 12, 12, 12, 36, 12, 36, 12, 12, // 72
	12, 36, 12, 12, 12, 12, 12, 36, 12, 36, 12, 12, // 84
	12, 36, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, // 96
}

// pendingBytes reports how many continuation bytes a state still expects.
func pendingBytes(state uint8) int {
	switch state {
	case 24:
		return 1
	case 36, 48, 60:
		return 2
	case 72, 84, 96:
		return 3
	}
	return 0
}

// Surrogate and range constants shared by the codecs.
const (
	runeSelf  = 0x80
	maxOneB   = 0x7F
	maxTwoB   = 0x7FF
	maxBMP    = 0xFFFF
	surrSelf  = 0x10000
	leadMin   = 0xD800
	leadMax   = 0xDBFF
	trailMin  = 0xDC00
	trailMax  = 0xDFFF
	latin1Max = 0xFF
)

func isLead(u uint16) bool  { return u >= leadMin && u <= leadMax }
func isTrail(u uint16) bool { return u >= trailMin && u <= trailMax }

// splitSupplementary returns the surrogate pair for a code point above U+FFFF.
func splitSupplementary(cp uint32) (lead, trail uint16) {
	cp -= surrSelf
	return uint16(leadMin + (cp >> 10)), uint16(trailMin + (cp & 0x3FF))
}

// joinSurrogates combines a lead and a trail surrogate into a code point.
func joinSurrogates(lead, trail uint16) uint32 {
	return (uint32(lead)-leadMin)<<10 | (uint32(trail) - trailMin) + surrSelf
}
