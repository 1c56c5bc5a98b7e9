package apiframe

func UnpackMode(buf []byte, escaped, encrypted bool) ([]byte, []byte, error) {
	return unpack(buf, escaped, encrypted)
}

var ATStatusFrom = atStatusFrom
