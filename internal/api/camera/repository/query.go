package cameraRepository

const (
	queryGetCameraByID = `
		SELECT
			id,
			gate_id,
			name,
			rtsp_url,
			snapshot_url,
			is_active,
			last_seen,
			created_at
		FROM cameras
		WHERE id = :id
	`

	queryListCameras = `
		SELECT
			id,
			gate_id,
			name,
			rtsp_url,
			snapshot_url,
			is_active,
			last_seen,
			created_at
		FROM cameras
		ORDER BY gate_id, id
	`

	queryGateExists = `
		SELECT EXISTS (SELECT 1 FROM gates WHERE id = :id)
	`

	queryTouchLastSeen = `
		UPDATE cameras
		SET last_seen = :last_seen
		WHERE id = :id
	`
)
