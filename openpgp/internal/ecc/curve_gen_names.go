// Package ecc implements a generic interface for ECDH, ECDSA, and EdDSA.
package ecc

// FindECDSAByGenName returns the ECDSA curve registered under the given
// generation name, or nil.
func FindECDSAByGenName(name string) ECDSACurve {
	for idx := range Curves {
		curveInfo := &Curves[idx]
		if curveInfo.GenName != name {
			continue
		}
		if c, ok := curveInfo.Curve.(ECDSACurve); ok {
			return c
		}
	}
	return nil
}

// FindEdDSAByGenName returns the EdDSA curve registered under the given
// generation name, or nil.
func FindEdDSAByGenName(name string) EdDSACurve {
	for idx := range Curves {
		curveInfo := &Curves[idx]
		if curveInfo.GenName != name {
			continue
		}
		if c, ok := curveInfo.Curve.(EdDSACurve); ok {
			return c
		}
	}
	return nil
}

// FindECDHByGenName returns the ECDH curve registered under the given
// generation name, or nil.
func FindECDHByGenName(name string) ECDHCurve {
	for idx := range Curves {
		curveInfo := &Curves[idx]
		if curveInfo.GenName != name {
			continue
		}
		if c, ok := curveInfo.Curve.(ECDHCurve); ok {
			return c
		}
	}
	return nil
}
