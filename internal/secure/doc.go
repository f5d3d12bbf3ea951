// Package secure keeps raw secret payloads out of ordinary heap memory
// while they are being decoded.
//
// A fetched secret blob is sealed into a memguard enclave as soon as it
// arrives from the remote store. The decoder opens it into a locked buffer,
// parses it, and destroys both the buffer and the blob afterwards, so the raw
// text never outlives the decode step:
//
//	blob, err := secure.SealBlob(value)
//	if err != nil {
//	    return err
//	}
//	defer blob.Destroy()
//
//	locked, err := blob.Open()
//	if err != nil {
//	    return err
//	}
//	defer locked.Destroy()
//	parse(locked.Bytes())
//
// # Platform Behavior
//
// Memory locking behavior varies by platform:
//
//   - Linux: Requires RLIMIT_MEMLOCK to be set appropriately
//   - macOS: Works out of the box
//   - Windows: Uses VirtualLock
//
// Call memguard.Purge from main (or rely on process exit) to wipe any
// enclave keys still held by memguard.
package secure
