package roiRepository

const (
	queryGetCameraROI = `
		SELECT
			id,
			camera_id,
			roi_x,
			roi_y,
			roi_w,
			roi_h,
			coordinate_type,
			updated_at
		FROM camera_rois
		WHERE camera_id = :camera_id
	`

	queryUpsertCameraROI = `
		INSERT INTO camera_rois (
			camera_id,
			roi_x,
			roi_y,
			roi_w,
			roi_h,
			coordinate_type,
			updated_at
		) VALUES (
			:camera_id,
			:roi_x,
			:roi_y,
			:roi_w,
			:roi_h,
			:coordinate_type,
			:updated_at
		)
		ON CONFLICT (camera_id) DO UPDATE SET
			roi_x = EXCLUDED.roi_x,
			roi_y = EXCLUDED.roi_y,
			roi_w = EXCLUDED.roi_w,
			roi_h = EXCLUDED.roi_h,
			coordinate_type = EXCLUDED.coordinate_type,
			updated_at = EXCLUDED.updated_at
		RETURNING
			id,
			camera_id,
			roi_x,
			roi_y,
			roi_w,
			roi_h,
			coordinate_type,
			updated_at
	`

	queryGetGateROI = `
		SELECT
			id,
			gate_id,
			camera_id,
			shape,
			coordinates,
			created_at
		FROM rois
		WHERE gate_id = :gate_id AND camera_id = :camera_id
	`

	queryUpsertGateROI = `
		INSERT INTO rois (
			gate_id,
			camera_id,
			shape,
			coordinates,
			created_at
		) VALUES (
			:gate_id,
			:camera_id,
			:shape,
			:coordinates,
			:created_at
		)
		ON CONFLICT ON CONSTRAINT uix_gate_camera_roi DO UPDATE SET
			shape = EXCLUDED.shape,
			coordinates = EXCLUDED.coordinates,
			created_at = EXCLUDED.created_at
		RETURNING
			id,
			gate_id,
			camera_id,
			shape,
			coordinates,
			created_at
	`
)
