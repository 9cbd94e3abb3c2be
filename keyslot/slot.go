package keyslot

import "strings"

// SlotCount is the number of hash slots in a Redis Cluster.
const SlotCount = 16384

// HashTag returns the part of key Redis Cluster hashes: the substring
// between the first '{' and the following '}', when that substring is
// non-empty; otherwise the whole key.
func HashTag(key string) string {
	start := strings.IndexByte(key, '{')
	if start < 0 {
		return key
	}
	end := strings.IndexByte(key[start+1:], '}')
	if end <= 0 {
		return key
	}
	return key[start+1 : start+1+end]
}

// Slot returns the Redis Cluster hash slot for key.
func Slot(key string) int {
	return int(crc16([]byte(HashTag(key))) % SlotCount)
}

// SameSlot reports whether every key maps to one slot.
func SameSlot(keys ...string) bool {
	if len(keys) == 0 {
		return true
	}
	first := Slot(keys[0])
	for _, k := range keys[1:] {
		if Slot(k) != first {
			return false
		}
	}
	return true
}

// crc16 is CRC-16/XMODEM (poly 0x1021, init 0), the checksum Redis Cluster
// uses for key slots.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
