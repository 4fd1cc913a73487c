package eventide

const (
	luaAppendEvents = `
		-- Atomically append events to a stream with a version check
		-- KEYS[1] = event list key
		-- ARGV[1] = expected version
		-- ARGV[2..N] = event data (JSON)
		-- Returns: {1, newVersion} on success, or {0, currentVersion}

		local current = redis.call('LLEN', KEYS[1])
		local expected = tonumber(ARGV[1])

		if expected ~= current then
			return {0, current}
		end

		local chunkSize = 128
		local startIdx = 2

		while startIdx <= #ARGV do
			local endIdx = math.min(startIdx + chunkSize - 1, #ARGV)
			local chunk = {}
			for i = startIdx, endIdx do
				table.insert(chunk, ARGV[i])
			end
			redis.call('RPUSH', KEYS[1], unpack(chunk))
			startIdx = endIdx + 1
		end

		return {1, redis.call('LLEN', KEYS[1])}
		`
)
